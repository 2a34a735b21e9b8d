// Package pipeline sequences one extraction request: render pages, analyze
// layout when configured, invoke the extraction model, and merge the two
// confidence signals into one result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"docex/internal/config"
	"docex/internal/confidence"
	"docex/internal/domain"
	"docex/internal/port"
	"docex/internal/schema"
)

// Options carries the per-request extraction parameters. Prompt is required;
// nil decoding parameters fall back to the configured defaults.
type Options struct {
	Prompt      string
	MaxTokens   int
	Temperature *float64
	TopP        *float64
}

// Pipeline owns one extraction flow. A nil layout analyzer disables the
// layout confidence path; strictLayout controls whether an exhausted layout
// analysis fails the request or degrades it to LLM-only confidence.
type Pipeline struct {
	renderer     port.DocumentRenderer
	layout       port.LayoutAnalyzer
	extractor    port.Extractor
	strictLayout bool
	defaults     config.ExtractorConfig
}

// New creates a Pipeline.
func New(
	renderer port.DocumentRenderer,
	layoutAnalyzer port.LayoutAnalyzer,
	extractor port.Extractor,
	strictLayout bool,
	defaults config.ExtractorConfig,
) *Pipeline {
	return &Pipeline{
		renderer:     renderer,
		layout:       layoutAnalyzer,
		extractor:    extractor,
		strictLayout: strictLayout,
		defaults:     defaults,
	}
}

// Extract runs the full pipeline for one document and returns the extracted
// object with its merged confidence map. All intermediate data is owned by
// this call; nothing survives it.
func (p *Pipeline) Extract(ctx context.Context, doc domain.RawDocument, contract *schema.Contract, opts Options) (*domain.ConfidenceResult, error) {
	if opts.Prompt == "" {
		return nil, fmt.Errorf("extraction prompt is required")
	}
	if contract == nil {
		return nil, fmt.Errorf("extraction contract is required")
	}

	requestID := uuid.New().String()

	// Rendering and layout analysis are independent, so they run together
	// and join before the request is assembled.
	type renderResult struct {
		pages []domain.PageImage
		err   error
	}
	type layoutOutcome struct {
		layout *domain.LayoutResult
		err    error
	}

	renderCh := make(chan renderResult, 1)
	layoutCh := make(chan layoutOutcome, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pages, err := p.renderer.Render(ctx, doc)
		renderCh <- renderResult{pages, err}
	}()

	if p.layout != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := p.layout.Analyze(ctx, port.AnalyzeInput{
				Bytes:       doc.Bytes,
				ContentType: doc.ContentType,
				PageRange:   doc.PageRangeString(),
			})
			layoutCh <- layoutOutcome{result, err}
		}()
	} else {
		layoutCh <- layoutOutcome{}
	}

	wg.Wait()
	close(renderCh)
	close(layoutCh)

	rendered := <-renderCh
	if rendered.err != nil {
		return nil, rendered.err
	}

	layoutRes := <-layoutCh
	layout := layoutRes.layout
	if layoutRes.err != nil {
		var authErr *domain.AuthenticationError
		if errors.As(layoutRes.err, &authErr) || ctx.Err() != nil || p.strictLayout {
			return nil, layoutRes.err
		}
		log.Printf("pipeline.Pipeline: [%s] layout analysis failed, continuing LLM-only: %v", requestID, layoutRes.err)
		layout = nil
	}

	layoutText := ""
	if layout != nil {
		layoutText = layout.Content
	}

	output, err := p.extractor.Extract(ctx, port.ExtractInput{
		Prompt:      opts.Prompt,
		LayoutText:  layoutText,
		Pages:       rendered.pages,
		Contract:    contract,
		MaxTokens:   p.maxTokens(opts),
		Temperature: p.temperature(opts),
		TopP:        p.topP(opts),
	})
	if err != nil {
		return nil, err
	}

	leaves, err := schema.Leaves(output.Object)
	if err != nil {
		return nil, &domain.SchemaValidationError{Err: err}
	}

	llmScores := confidence.EvaluateLLM(leaves, output.Tokens)
	var layoutScores domain.ConfidenceMap
	if layout != nil {
		layoutScores = confidence.EvaluateLayout(leaves, layout)
	}
	merged := confidence.Merge(llmScores, layoutScores)

	log.Printf("pipeline.Pipeline: [%s] model %s extracted %d scored field(s), overall confidence %.3f",
		requestID, output.Model, len(merged)-1, merged[domain.OverallKey])

	return &domain.ConfidenceResult{
		Data:              output.Object,
		ConfidenceScores:  merged,
		OverallConfidence: merged[domain.OverallKey],
	}, nil
}

func (p *Pipeline) maxTokens(opts Options) int {
	if opts.MaxTokens > 0 {
		return opts.MaxTokens
	}
	if p.defaults.MaxTokens > 0 {
		return p.defaults.MaxTokens
	}
	return 4096
}

func (p *Pipeline) temperature(opts Options) float64 {
	if opts.Temperature != nil {
		return *opts.Temperature
	}
	return p.defaults.Temperature
}

func (p *Pipeline) topP(opts Options) float64 {
	if opts.TopP != nil {
		return *opts.TopP
	}
	return p.defaults.TopP
}
