// Package layout selects the configured layout analyzer, if any.
package layout

import (
	"fmt"

	"docex/internal/config"
	"docex/internal/layout/azure"
	"docex/internal/layout/tesseract"
	"docex/internal/port"
)

// NewAnalyzer creates the configured layout analyzer. A nil analyzer (with
// nil error) means the layout path is disabled and the pipeline runs
// LLM-only confidence.
func NewAnalyzer(cfg *config.LayoutConfig, tokens port.TokenProvider, renderer port.DocumentRenderer) (port.LayoutAnalyzer, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "azure":
		if cfg.Endpoint == "" {
			return nil, nil
		}
		return azure.NewClient(cfg, tokens), nil
	case "tesseract":
		return tesseract.NewAnalyzer(renderer), nil
	default:
		return nil, fmt.Errorf("unknown layout provider: %s", cfg.Provider)
	}
}
