// Package azure talks to the Azure Document Intelligence prebuilt-layout
// model over REST: a begin-analyze POST followed by polling the returned
// Operation-Location until the analysis settles.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"docex/internal/config"
	"docex/internal/domain"
	"docex/internal/port"
)

const modelID = "prebuilt-layout"

// Client implements port.LayoutAnalyzer against Azure Document Intelligence.
type Client struct {
	endpoint     string
	apiVersion   string
	tokens       port.TokenProvider
	client       *http.Client
	maxRetries   int
	pollInterval time.Duration
}

// NewClient creates a Document Intelligence layout client from layout config.
func NewClient(cfg *config.LayoutConfig, tokens port.TokenProvider) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	pollInterval := time.Duration(cfg.PollIntervalMSec) * time.Millisecond
	if pollInterval == 0 {
		pollInterval = 2 * time.Second
	}
	return &Client{
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		apiVersion:   cfg.APIVersion,
		tokens:       tokens,
		client:       &http.Client{Timeout: timeout},
		maxRetries:   cfg.MaxRetries,
		pollInterval: pollInterval,
	}
}

// Analyze runs the layout model with bounded retries and exponential backoff
// on transient failures. Authentication failures and context cancellation
// are surfaced immediately; exhaustion wraps the last error in a
// LayoutAnalysisError so the caller can apply its degrade-or-fail policy.
func (c *Client) Analyze(ctx context.Context, input port.AnalyzeInput) (*domain.LayoutResult, error) {
	attempts := c.maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(1<<uint(attempt-2)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := c.analyzeOnce(ctx, input)
		if err == nil {
			return result, nil
		}

		var authErr *domain.AuthenticationError
		if errors.As(err, &authErr) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		log.Printf("azure.Client: analyze attempt %d/%d failed: %v", attempt, attempts, err)
		lastErr = err
	}

	return nil, &domain.LayoutAnalysisError{Attempts: attempts, Err: lastErr}
}

func (c *Client) analyzeOnce(ctx context.Context, input port.AnalyzeInput) (*domain.LayoutResult, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	operationURL, err := c.beginAnalyze(ctx, input, token)
	if err != nil {
		return nil, err
	}

	return c.pollResult(ctx, operationURL, token)
}

func (c *Client) beginAnalyze(ctx context.Context, input port.AnalyzeInput, token string) (string, error) {
	url := fmt.Sprintf(
		"%s/documentintelligence/documentModels/%s:analyze?api-version=%s&outputContentFormat=markdown",
		c.endpoint, modelID, c.apiVersion,
	)
	if input.PageRange != "" {
		url += "&pages=" + input.PageRange
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(input.Bytes))
	if err != nil {
		return "", fmt.Errorf("creating analyze request: %w", err)
	}
	req.Header.Set("Content-Type", input.ContentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling layout service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading analyze response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", &domain.AuthenticationError{
			Service: "layout",
			Err:     fmt.Errorf("layout service returned status %d: %s", resp.StatusCode, string(body)),
		}
	}
	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("layout service error (status %d): %s", resp.StatusCode, string(body))
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", fmt.Errorf("layout service returned no Operation-Location header")
	}
	return operationURL, nil
}

func (c *Client) pollResult(ctx context.Context, operationURL, token string) (*domain.LayoutResult, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		resp, err := c.fetchOperation(ctx, operationURL, token)
		if err != nil {
			return nil, err
		}

		switch resp.Status {
		case "succeeded":
			return mapResult(resp), nil
		case "failed":
			return nil, fmt.Errorf("layout analysis failed: %s", resp.Error.Message)
		default:
			// notStarted / running: keep polling.
		}
	}
}

func (c *Client) fetchOperation(ctx context.Context, operationURL, token string) (*analyzeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating poll request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polling layout operation: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading poll response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &domain.AuthenticationError{
			Service: "layout",
			Err:     fmt.Errorf("layout service returned status %d: %s", resp.StatusCode, string(body)),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("layout poll error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling poll response: %w", err)
	}
	return &parsed, nil
}

// analyzeResponse models the Document Intelligence analyze operation result.
type analyzeResponse struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		Content string `json:"content"`
		Pages   []struct {
			PageNumber int `json:"pageNumber"`
			Words      []struct {
				Content    string  `json:"content"`
				Confidence float64 `json:"confidence"`
				Span       struct {
					Offset int `json:"offset"`
					Length int `json:"length"`
				} `json:"span"`
			} `json:"words"`
		} `json:"pages"`
	} `json:"analyzeResult"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mapResult(resp *analyzeResponse) *domain.LayoutResult {
	result := &domain.LayoutResult{Content: resp.AnalyzeResult.Content}
	for _, page := range resp.AnalyzeResult.Pages {
		for _, word := range page.Words {
			result.Spans = append(result.Spans, domain.LayoutSpan{
				Text:       word.Content,
				Confidence: word.Confidence,
				Offset:     word.Span.Offset,
				Length:     word.Span.Length,
				Page:       page.PageNumber,
			})
		}
	}
	return result
}
