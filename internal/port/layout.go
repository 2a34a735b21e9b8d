package port

import (
	"context"

	"docex/internal/domain"
)

// AnalyzeInput carries the data needed for a layout analysis pass.
type AnalyzeInput struct {
	Bytes       []byte
	ContentType string
	// PageRange is an inclusive "start-end" selection, or "" for all pages.
	PageRange string
}

// LayoutAnalyzer abstracts a document-layout-analysis engine that returns
// layout text plus per-span OCR confidences.
type LayoutAnalyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*domain.LayoutResult, error)
}
