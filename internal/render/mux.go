// Package render routes documents to the renderer registered for their
// content type.
package render

import (
	"context"
	"fmt"

	"docex/internal/domain"
	"docex/internal/port"
)

// Mux is a content-type-keyed DocumentRenderer.
type Mux struct {
	renderers map[string]port.DocumentRenderer
}

// NewMux creates a renderer mux from a content-type map.
func NewMux(renderers map[string]port.DocumentRenderer) *Mux {
	return &Mux{renderers: renderers}
}

func (m *Mux) Render(ctx context.Context, doc domain.RawDocument) ([]domain.PageImage, error) {
	renderer, ok := m.renderers[doc.ContentType]
	if !ok {
		return nil, &domain.RenderingError{Err: fmt.Errorf("unsupported content type: %s", doc.ContentType)}
	}
	return renderer.Render(ctx, doc)
}
