package parser

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ValidationError is the normalized form of one issue reported by the
// validator. Every field is optional: nil means the validator didn't report it.
type ValidationError struct {
	ID                    *string         `json:"Id"`
	Description           *string         `json:"Description"`
	Namespaces            json.RawMessage `json:"Namespaces"`
	NamespacesDefinitions []string        `json:"NamespacesDefinitions"`
	XPath                 *string         `json:"XPath"`
	PartURI               *string         `json:"PartUri"`
	ErrorType             *int            `json:"ErrorType"`
}

// Fields lists the exported field names in serialization order
var Fields = []string{"Id", "Description", "Namespaces", "NamespacesDefinitions", "XPath", "PartUri", "ErrorType"}

// RawValidationError is one error object as printed by the validator.
// Its schema differs between validator versions so decoding is permissive.
type RawValidationError struct {
	ID          *string   `json:"Id"`
	Description *string   `json:"Description"`
	ErrorType   ErrorType `json:"ErrorType"`
	Path        *RawPath  `json:"Path"`
}

// RawPath is the location information nested under Path
type RawPath struct {
	NamespacesDefinitions NamespaceDefinitions `json:"NamespacesDefinitions"`
	Namespaces            json.RawMessage      `json:"Namespaces"`
	XPath                 *string              `json:"XPath"`
	PartURI               *string              `json:"PartUri"`
}

// NamespaceDefinitions decodes either a plain array of strings or an array
// wrapped in a container object such as {"$values": [...]}
type NamespaceDefinitions []string

// UnmarshalJSON implements json.Unmarshaler
func (n *NamespaceDefinitions) UnmarshalJSON(data []byte) error {
	defs, err := decodeNamespaceDefinitions(data)
	if err != nil {
		return err
	}
	*n = defs
	return nil
}

func decodeNamespaceDefinitions(data []byte) ([]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		defs := make([]string, 0, len(items))
		for _, item := range items {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				// Not a string, keep its JSON text rather than dropping it
				s = string(bytes.TrimSpace(item))
			}
			defs = append(defs, s)
		}
		return defs, nil

	case '{':
		var container map[string]json.RawMessage
		if err := json.Unmarshal(data, &container); err != nil {
			return nil, err
		}
		if values, ok := container["$values"]; ok {
			return decodeNamespaceDefinitions(values)
		}
		// Otherwise accept a container with a single array member
		var wrapped json.RawMessage
		for _, v := range container {
			v = bytes.TrimSpace(v)
			if len(v) > 0 && v[0] == '[' {
				if wrapped != nil {
					return nil, nil
				}
				wrapped = v
			}
		}
		if wrapped == nil {
			return nil, nil
		}
		return decodeNamespaceDefinitions(wrapped)

	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return []string{s}, nil
	}

	return nil, nil
}

// ErrorType decodes the validator's error category code, which some
// validator versions print as a number and others as a numeric string
type ErrorType struct {
	Value *int
}

// UnmarshalJSON implements json.Unmarshaler
func (e *ErrorType) UnmarshalJSON(data []byte) error {
	e.Value = nil
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		e.Value = &n
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := strconv.Atoi(s); err == nil {
			e.Value = &parsed
		}
	}
	// Anything else is treated as absent
	return nil
}
