package port

import (
	"context"
	"encoding/json"

	"docex/internal/domain"
	"docex/internal/schema"
)

// ExtractInput carries one assembled extraction request. Content ordering is
// fixed: prompt text, layout text if present, then page images in page order.
type ExtractInput struct {
	Prompt      string
	LayoutText  string
	Pages       []domain.PageImage
	Contract    *schema.Contract
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// ExtractOutput is the schema-validated model response plus its token trace.
type ExtractOutput struct {
	Object json.RawMessage
	Tokens []domain.TokenLogProb
	Model  string
}

// Extractor abstracts a vision-capable model that returns schema-constrained
// output with per-token log-probabilities.
type Extractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
