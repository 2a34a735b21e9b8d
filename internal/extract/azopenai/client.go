// Package azopenai invokes an Azure OpenAI vision deployment for
// schema-constrained extraction with token log-probabilities enabled.
package azopenai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docex/internal/config"
	"docex/internal/domain"
	"docex/internal/port"
	"docex/internal/schema"
)

// systemPrompt is the fixed preamble for every extraction call. It is never
// derived from caller input.
const systemPrompt = "You are an AI assistant that extracts data from documents."

// Client implements port.Extractor against the Azure OpenAI chat completions API.
type Client struct {
	requestURL string
	tokens     port.TokenProvider
	client     *http.Client
}

// NewClient creates an extraction client from extractor config.
func NewClient(cfg *config.ExtractorConfig, tokens port.TokenProvider) *Client {
	url := fmt.Sprintf(
		"%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(cfg.Endpoint, "/"), cfg.Deployment, cfg.APIVersion,
	)
	return newClient(cfg, tokens, url)
}

// NewClientWithURL creates a client pointing at a custom request URL (for testing).
func NewClientWithURL(cfg *config.ExtractorConfig, tokens port.TokenProvider, url string) *Client {
	return newClient(cfg, tokens, url)
}

func newClient(cfg *config.ExtractorConfig, tokens port.TokenProvider, url string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		requestURL: url,
		tokens:     tokens,
		client:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"messages": []map[string]interface{}{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": BuildContent(input.Prompt, input.LayoutText, input.Pages)},
		},
		"max_tokens":  input.MaxTokens,
		"temperature": input.Temperature,
		"top_p":       input.TopP,
		// Required so the confidence evaluator can score each field.
		"logprobs": true,
		"response_format": map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   input.Contract.Name(),
				"strict": true,
				"schema": input.Contract.Raw(),
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling extraction model: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &domain.AuthenticationError{
			Service: "extraction",
			Err:     fmt.Errorf("extraction model returned status %d: %s", resp.StatusCode, string(respBody)),
		}
	}
	if resp.StatusCode != http.StatusOK {
		if retryAfter := resp.Header.Get("Retry-After"); resp.StatusCode == http.StatusTooManyRequests && retryAfter != "" {
			return nil, fmt.Errorf("extraction model error (status %d, retry after %ss): %s", resp.StatusCode, retryAfter, string(respBody))
		}
		return nil, fmt.Errorf("extraction model error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return parseResponse(respBody, input.Contract)
}

// BuildContent assembles the ordered user content for one extraction call:
// the extraction prompt, layout text when available, then each page image in
// page order.
func BuildContent(prompt, layoutText string, pages []domain.PageImage) []map[string]interface{} {
	blocks := []map[string]interface{}{
		{"type": "text", "text": prompt},
	}
	if layoutText != "" {
		blocks = append(blocks, map[string]interface{}{
			"type": "text",
			"text": layoutText,
		})
	}
	for i := range pages {
		blocks = append(blocks, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": pages[i].DataURI(),
			},
		})
	}
	return blocks
}

// apiResponse models the chat completions response, including the per-token
// log-probability trace.
type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Logprobs     struct {
			Content []struct {
				Token   string  `json:"token"`
				Logprob float64 `json:"logprob"`
			} `json:"content"`
		} `json:"logprobs"`
	} `json:"choices"`
}

func parseResponse(body []byte, contract *schema.Contract) (*port.ExtractOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	content := choice.Message.Content
	if err := contract.Validate([]byte(content)); err != nil {
		return nil, err
	}

	tokens := make([]domain.TokenLogProb, 0, len(choice.Logprobs.Content))
	for _, t := range choice.Logprobs.Content {
		tokens = append(tokens, domain.TokenLogProb{Token: t.Token, LogProb: t.Logprob})
	}

	return &port.ExtractOutput{
		Object: json.RawMessage(content),
		Tokens: tokens,
		Model:  resp.Model,
	}, nil
}
