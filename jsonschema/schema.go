package jsonschema

import "github.com/goccy/go-json"

// Draft is the dialect declared by exported root documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
// Keep this struct small and extend incrementally.
type Schema struct {
	Dialect string             `json:"$schema,omitempty"`
	Ref     string             `json:"$ref,omitempty"`
	Defs    map[string]*Schema `json:"$defs,omitempty"`

	// Core
	Title string `json:"title,omitempty"`
	// Type is a string, or a []string such as ["integer","null"] for
	// nullable values.
	Type     any    `json:"type,omitempty"`
	Format   string `json:"format,omitempty"`
	ReadOnly bool   `json:"readOnly,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
}

// Nullable returns a copy of s that also admits null.
func Nullable(s *Schema) *Schema {
	out := *s
	switch t := s.Type.(type) {
	case string:
		out.Type = []string{t, "null"}
		return &out
	case []string:
		out.Type = append(append([]string(nil), t...), "null")
		return &out
	}
	return &Schema{OneOf: []*Schema{s, {Type: "null"}}, ReadOnly: s.ReadOnly}
}

// Marshal renders s as indented JSON.
func Marshal(s *Schema) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
