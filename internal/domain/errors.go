package domain

import "fmt"

// RangeError indicates an invalid page range for the rendered document.
type RangeError struct {
	Start int
	End   int
	Pages int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid page range %d-%d for %d-page document", e.Start, e.End, e.Pages)
}

// RenderingError indicates the document bytes could not be rasterized.
// Fatal, not retried.
type RenderingError struct {
	Err error
}

func (e *RenderingError) Error() string {
	return fmt.Sprintf("rendering document: %v", e.Err)
}

func (e *RenderingError) Unwrap() error {
	return e.Err
}

// LayoutAnalysisError indicates the layout service failed after the allowed
// number of attempts. Whether it fails the request or degrades it to the
// LLM-only confidence path is a pipeline policy decision.
type LayoutAnalysisError struct {
	Attempts int
	Err      error
}

func (e *LayoutAnalysisError) Error() string {
	return fmt.Sprintf("layout analysis failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *LayoutAnalysisError) Unwrap() error {
	return e.Err
}

// SchemaValidationError indicates the model produced output that does not
// conform to the requested schema. This points at a prompt/schema mismatch,
// not a transient failure, so it is fatal and never retried.
type SchemaValidationError struct {
	Err error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("model output does not conform to schema: %v", e.Err)
}

func (e *SchemaValidationError) Unwrap() error {
	return e.Err
}

// AuthenticationError indicates a service rejected the bearer credential.
// Fatal, not retried.
type AuthenticationError struct {
	Service string
	Err     error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v", e.Service, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}
