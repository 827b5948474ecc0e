package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// outputSchemaJSON describes what the validator must print on stdout
const outputSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": { "type": "object" }
}`

var outputSchema = mustLoadSchema(outputSchemaJSON)

func mustLoadSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid validator output schema: %v", err))
	}
	return s
}

// MalformedOutputError is returned when stdout isn't a JSON array of objects
type MalformedOutputError struct {
	Message string
	Cause   error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed validator output: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed validator output: %s", e.Message)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// ParseOutput decodes the validator's stdout into raw error records
func ParseOutput(stdout []byte) ([]RawValidationError, error) {
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		return nil, &MalformedOutputError{Message: "output is empty"}
	}
	if !json.Valid(trimmed) {
		return nil, &MalformedOutputError{Message: "output is not valid JSON"}
	}

	result, err := outputSchema.Validate(gojsonschema.NewBytesLoader(trimmed))
	if err != nil {
		return nil, &MalformedOutputError{Message: "failed to check output shape", Cause: err}
	}
	if !result.Valid() {
		var reasons []string
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			reasons = append(reasons, fmt.Sprintf("%s: %s", field, desc.Description()))
		}
		return nil, &MalformedOutputError{Message: strings.Join(reasons, "; ")}
	}

	var raw []RawValidationError
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &MalformedOutputError{Message: "failed to decode errors", Cause: err}
	}

	return raw, nil
}

// Normalize converts raw records into ValidationErrors. The result is never
// nil, so an empty run is distinguishable from a run that hasn't happened.
func Normalize(raw []RawValidationError) []ValidationError {
	normalized := make([]ValidationError, 0, len(raw))
	for _, r := range raw {
		normalized = append(normalized, NewValidationError(r))
	}
	return normalized
}

// NewValidationError builds a ValidationError from one raw record
func NewValidationError(raw RawValidationError) ValidationError {
	ve := ValidationError{
		ID:          cloneString(raw.ID),
		Description: cloneString(raw.Description),
		ErrorType:   cloneInt(raw.ErrorType.Value),
	}

	if raw.Path != nil {
		ve.XPath = cloneString(raw.Path.XPath)
		ve.PartURI = cloneString(raw.Path.PartURI)
		if raw.Path.NamespacesDefinitions != nil {
			ve.NamespacesDefinitions = append([]string{}, raw.Path.NamespacesDefinitions...)
		}
		if len(raw.Path.Namespaces) > 0 {
			ve.Namespaces = append(json.RawMessage{}, raw.Path.Namespaces...)
		}
	}

	return ve
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
