package port

import "context"

// ObjectStorage abstracts fetch-only access to documents referenced by
// bucket and key. Returns the object bytes and its content type.
type ObjectStorage interface {
	Download(ctx context.Context, bucket, key string) ([]byte, string, error)
}
