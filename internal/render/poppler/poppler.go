// Package poppler rasterizes PDF documents into page images by shelling out
// to poppler's pdftoppm.
package poppler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"docex/internal/config"
	"docex/internal/domain"
)

// Renderer renders PDFs with pdftoppm.
type Renderer struct {
	binPath string
	dpi     int
}

// NewRenderer creates a pdftoppm-backed renderer from render config.
func NewRenderer(cfg *config.RenderConfig) *Renderer {
	binPath := cfg.PdftoppmPath
	if binPath == "" {
		binPath = "pdftoppm"
	}
	dpi := cfg.DPI
	if dpi == 0 {
		dpi = 150
	}
	return &Renderer{binPath: binPath, dpi: dpi}
}

// Render rasterizes every page, then slices to the document's inclusive page
// range when one is set. Range validation happens against the full page
// count, so out-of-bounds indexes are a RangeError rather than silently
// clamped.
func (r *Renderer) Render(ctx context.Context, doc domain.RawDocument) ([]domain.PageImage, error) {
	dir, err := os.MkdirTemp("", "docex-render-")
	if err != nil {
		return nil, &domain.RenderingError{Err: fmt.Errorf("creating temp dir: %w", err)}
	}
	defer func() { _ = os.RemoveAll(dir) }()

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, doc.Bytes, 0o600); err != nil {
		return nil, &domain.RenderingError{Err: fmt.Errorf("writing temp document: %w", err)}
	}

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, r.binPath, "-png", "-r", strconv.Itoa(r.dpi), input, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &domain.RenderingError{
			Err: fmt.Errorf("pdftoppm: %v: %s", err, strings.TrimSpace(stderr.String())),
		}
	}

	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, &domain.RenderingError{Err: err}
	}
	if len(files) == 0 {
		return nil, &domain.RenderingError{Err: fmt.Errorf("pdftoppm produced no pages")}
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(files)

	pages := make([]domain.PageImage, 0, len(files))
	for i, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, &domain.RenderingError{Err: fmt.Errorf("reading rendered page: %w", err)}
		}
		pages = append(pages, domain.PageImage{
			PageNumber: i + 1,
			MIMEType:   "image/png",
			Data:       data,
		})
	}

	return slicePages(pages, doc)
}

// slicePages applies the document's inclusive page range after full
// rasterization. Original page numbers are preserved on the slice.
func slicePages(pages []domain.PageImage, doc domain.RawDocument) ([]domain.PageImage, error) {
	start, end, ok := doc.PageRange()
	if !ok {
		return pages, nil
	}
	if start < 1 || end > len(pages) || start > end {
		return nil, &domain.RangeError{Start: start, End: end, Pages: len(pages)}
	}
	return pages[start-1 : end], nil
}
