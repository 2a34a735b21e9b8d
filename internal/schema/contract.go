// Package schema holds the caller-supplied extraction contract: a JSON
// Schema the model output must conform to, plus helpers for walking the
// leaf fields of extracted objects.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"docex/internal/domain"
)

// Contract is a compiled extraction schema. The raw schema text travels to
// the model as its response format; the compiled form validates what comes
// back. The pipeline never looks at individual field names.
type Contract struct {
	name     string
	raw      json.RawMessage
	compiled *jsonschema.Schema
}

// Compile builds a Contract from raw JSON Schema bytes.
func Compile(name string, raw []byte) (*Contract, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Contract{
		name:     name,
		raw:      json.RawMessage(raw),
		compiled: compiled,
	}, nil
}

// Name returns the contract's name, used as the response format name.
func (c *Contract) Name() string {
	return c.name
}

// Raw returns the schema exactly as supplied by the caller.
func (c *Contract) Raw() json.RawMessage {
	return c.raw
}

// Validate checks an extracted object against the compiled schema. Any
// failure is a domain.SchemaValidationError: malformed generations indicate
// a prompt/schema mismatch, not a transient fault.
func (c *Contract) Validate(doc []byte) error {
	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return &domain.SchemaValidationError{Err: fmt.Errorf("output is not valid JSON: %w", err)}
	}
	if err := c.compiled.Validate(v); err != nil {
		return &domain.SchemaValidationError{Err: err}
	}
	return nil
}
