package port

import "context"

// TokenProvider supplies the bearer credential used against the layout and
// extraction services. Token acquisition itself lives outside the pipeline.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}
