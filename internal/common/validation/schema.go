// Package validation wraps JSON-schema checking of collaborator payloads.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type Result struct {
	Valid  bool
	Errors []FieldError
}

type FieldError struct {
	Field   string
	Message string
}

// ErrorMessages flattens the field errors for logging and error details.
func (r *Result) ErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return msgs
}

// ValidateDocument checks a decoded JSON document against a schema expressed
// as a Go map. Schema compilation failures are returned as errors, not
// validation results.
func ValidateDocument(document interface{}, schema map[string]interface{}) (*Result, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed to run: %w", err)
	}

	out := &Result{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}
