// Package tesseract runs layout analysis locally with the tesseract engine,
// a substitute for the cloud layout service in offline deployments.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"docex/internal/domain"
	"docex/internal/port"
)

// Analyzer implements port.LayoutAnalyzer with local OCR over rendered pages.
type Analyzer struct {
	renderer port.DocumentRenderer
}

// NewAnalyzer creates a tesseract analyzer that renders documents through
// the given renderer before recognition.
func NewAnalyzer(renderer port.DocumentRenderer) *Analyzer {
	return &Analyzer{renderer: renderer}
}

func (a *Analyzer) Analyze(ctx context.Context, input port.AnalyzeInput) (*domain.LayoutResult, error) {
	doc := domain.RawDocument{Bytes: input.Bytes, ContentType: input.ContentType}
	if input.PageRange != "" {
		if _, err := fmt.Sscanf(input.PageRange, "%d-%d", &doc.PageStart, &doc.PageEnd); err != nil {
			return nil, &domain.LayoutAnalysisError{Attempts: 1, Err: fmt.Errorf("parsing page range %q: %w", input.PageRange, err)}
		}
	}

	pages, err := a.renderer.Render(ctx, doc)
	if err != nil {
		return nil, err
	}

	var content strings.Builder
	var spans []domain.LayoutSpan
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := a.recognizePage(page, &content, &spans); err != nil {
			return nil, &domain.LayoutAnalysisError{Attempts: 1, Err: err}
		}
	}

	return &domain.LayoutResult{Content: content.String(), Spans: spans}, nil
}

func (a *Analyzer) recognizePage(page domain.PageImage, content *strings.Builder, spans *[]domain.LayoutSpan) error {
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetImageFromBytes(page.Data); err != nil {
		return fmt.Errorf("setting page %d image: %w", page.PageNumber, err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return fmt.Errorf("recognizing page %d: %w", page.PageNumber, err)
	}

	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		offset := content.Len()
		content.WriteString(word)
		content.WriteString(" ")
		*spans = append(*spans, domain.LayoutSpan{
			Text: word,
			// tesseract reports confidence on a 0-100 scale.
			Confidence: box.Confidence / 100,
			Offset:     offset,
			Length:     len(word),
			Page:       page.PageNumber,
		})
	}
	content.WriteString("\n")
	return nil
}
