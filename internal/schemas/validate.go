// Package schemas provides JSON Schema validation for model-produced JSON.
// Schemas are embedded at compile time so validation needs no filesystem
// access at runtime.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// OpportunitySchema is the schema name for single-object opportunity extraction.
const OpportunitySchema = "opportunity"

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates schema violations found in one document.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("schema validation failed:")
	for _, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("\n  %s: %s", err.Field, err.Message))
	}
	return sb.String()
}

// Validate checks a JSON document against a named embedded schema. It returns
// a *ValidationError listing every violation, or an ordinary error when the
// document is not valid JSON or the schema cannot be loaded.
func Validate(schemaName string, document []byte) error {
	schemaBytes, err := schemaFiles.ReadFile(schemaName + ".schema.json")
	if err != nil {
		return fmt.Errorf("unknown schema %q: %w", schemaName, err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate against schema %q: %w", schemaName, err)
	}

	if result.Valid() {
		return nil
	}

	ve := &ValidationError{}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return ve
}
