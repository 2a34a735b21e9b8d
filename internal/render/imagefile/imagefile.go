// Package imagefile renders single-image documents (photographed pages)
// into the pipeline's page representation.
package imagefile

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"docex/internal/domain"
)

// Renderer decodes a single image document and re-encodes it as one PNG page.
type Renderer struct{}

// NewRenderer creates an image-file renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(ctx context.Context, doc domain.RawDocument) ([]domain.PageImage, error) {
	if start, end, ok := doc.PageRange(); ok && (start != 1 || end != 1) {
		return nil, &domain.RangeError{Start: start, End: end, Pages: 1}
	}

	img, _, err := image.Decode(bytes.NewReader(doc.Bytes))
	if err != nil {
		return nil, &domain.RenderingError{Err: fmt.Errorf("decoding image: %w", err)}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &domain.RenderingError{Err: fmt.Errorf("encoding page: %w", err)}
	}

	return []domain.PageImage{{
		PageNumber: 1,
		MIMEType:   "image/png",
		Data:       buf.Bytes(),
	}}, nil
}
