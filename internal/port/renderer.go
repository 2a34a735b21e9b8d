package port

import (
	"context"

	"docex/internal/domain"
)

// DocumentRenderer converts raw document bytes into ordered page images,
// optionally restricted to the document's page range.
type DocumentRenderer interface {
	Render(ctx context.Context, doc domain.RawDocument) ([]domain.PageImage, error)
}
