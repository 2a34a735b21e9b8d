package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"docex/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates pipeline errors to HTTP status codes and error
// codes, distinguishing bad input from misbehaving upstream services.
func MapDomainError(err error) (status int, code, msg string) {
	var rangeErr *domain.RangeError
	var renderErr *domain.RenderingError
	var schemaErr *domain.SchemaValidationError
	var authErr *domain.AuthenticationError
	var layoutErr *domain.LayoutAnalysisError

	switch {
	case errors.As(err, &rangeErr):
		return http.StatusBadRequest, "INVALID_PAGE_RANGE", rangeErr.Error()
	case errors.As(err, &renderErr):
		return http.StatusBadRequest, "RENDERING_FAILED", "document could not be rendered"
	case errors.As(err, &schemaErr):
		return http.StatusBadGateway, "SCHEMA_VALIDATION_FAILED", "model output did not conform to the extraction schema"
	case errors.As(err, &authErr):
		return http.StatusBadGateway, "UPSTREAM_AUTH_FAILED", "authentication against an upstream service failed"
	case errors.As(err, &layoutErr):
		return http.StatusBadGateway, "LAYOUT_ANALYSIS_FAILED", "layout analysis failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT", "extraction timed out"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a pipeline error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] %s: %v", requestID, code, err)
	}
	RespondError(c, status, code, msg)
}
