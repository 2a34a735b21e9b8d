package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docex/internal/domain"
	"docex/internal/pipeline"
	"docex/internal/port"
	"docex/internal/schema"
)

// ExtractionPipeline runs one extraction request end to end.
type ExtractionPipeline interface {
	Extract(ctx context.Context, doc domain.RawDocument, contract *schema.Contract, opts pipeline.Options) (*domain.ConfidenceResult, error)
}

// ExtractHandler handles document extraction requests.
type ExtractHandler struct {
	pipeline        ExtractionPipeline
	storage         port.ObjectStorage
	defaultContract *schema.Contract
}

// NewExtractHandler creates an ExtractHandler. storage may be nil when no
// object store is configured; defaultContract backs requests that carry no
// schema of their own.
func NewExtractHandler(p ExtractionPipeline, storage port.ObjectStorage, defaultContract *schema.Contract) *ExtractHandler {
	return &ExtractHandler{pipeline: p, storage: storage, defaultContract: defaultContract}
}

// extractRequest is the per-request options payload. Documents arrive either
// as a multipart file part or as an object storage reference.
type extractRequest struct {
	Prompt      string          `json:"prompt"`
	Schema      json.RawMessage `json:"schema,omitempty"`
	PageStart   int             `json:"page_start,omitempty"`
	PageEnd     int             `json:"page_end,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	TopP        *float64        `json:"top_p,omitempty"`
	Bucket      string          `json:"bucket,omitempty"`
	Key         string          `json:"key,omitempty"`
	ContentType string          `json:"content_type,omitempty"`
}

// Extract handles POST /api/v1/extract
func (h *ExtractHandler) Extract(c *gin.Context) {
	var req extractRequest
	var docBytes []byte
	var contentType string

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		optionsJSON := c.PostForm("options")
		if optionsJSON == "" {
			RespondError(c, http.StatusBadRequest, "MISSING_OPTIONS", "multipart requests require an options part")
			return
		}
		if err := json.Unmarshal([]byte(optionsJSON), &req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_OPTIONS", "options part is not valid JSON")
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			RespondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart requests require a file part")
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "file part could not be read")
			return
		}
		defer func() { _ = file.Close() }()
		docBytes, err = io.ReadAll(file)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "file part could not be read")
			return
		}

		contentType = req.ContentType
		if contentType == "" {
			contentType = fileHeader.Header.Get("Content-Type")
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body is not valid JSON")
			return
		}
		if req.Bucket == "" || req.Key == "" {
			RespondError(c, http.StatusBadRequest, "MISSING_DOCUMENT", "provide a multipart file or a bucket/key reference")
			return
		}
		if h.storage == nil {
			RespondError(c, http.StatusBadRequest, "STORAGE_NOT_CONFIGURED", "object storage is not configured")
			return
		}

		data, storedType, err := h.storage.Download(c.Request.Context(), req.Bucket, req.Key)
		if err != nil {
			RespondError(c, http.StatusBadGateway, "STORAGE_FETCH_FAILED", "document could not be fetched from storage")
			return
		}
		docBytes = data
		contentType = req.ContentType
		if contentType == "" {
			contentType = storedType
		}
	}

	if req.Prompt == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_PROMPT", "extraction prompt is required")
		return
	}

	contract := h.defaultContract
	if len(req.Schema) > 0 {
		compiled, err := schema.Compile("extraction", req.Schema)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_SCHEMA", "extraction schema could not be compiled")
			return
		}
		contract = compiled
	}

	doc := domain.RawDocument{
		Bytes:       docBytes,
		ContentType: contentType,
		PageStart:   req.PageStart,
		PageEnd:     req.PageEnd,
	}

	result, err := h.pipeline.Extract(c.Request.Context(), doc, contract, pipeline.Options{
		Prompt:      req.Prompt,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}
