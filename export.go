package godto

import (
	"strconv"

	js "github.com/reoring/godto/jsonschema"
)

// JSONSchema projects the schema into a JSON Schema document. Nested schemas
// are emitted once under $defs and referenced with $ref, so recursive schemas
// terminate. Immutable fields are marked readOnly; optional fields admit null.
func (s *Schema) JSONSchema() (*js.Schema, error) {
	ex := &exporter{refs: map[*Schema]string{s: "#"}, defs: map[string]*js.Schema{}, names: map[string]bool{}}
	root, err := ex.object(s)
	if err != nil {
		return nil, err
	}
	root.Dialect = js.Draft
	if len(ex.defs) > 0 {
		root.Defs = ex.defs
	}
	return root, nil
}

type exporter struct {
	refs  map[*Schema]string
	defs  map[string]*js.Schema
	names map[string]bool
}

func (ex *exporter) object(s *Schema) (*js.Schema, error) {
	out := &js.Schema{Title: s.name, Type: "object", Properties: make(map[string]*js.Schema, len(s.fields))}
	for i := range s.fields {
		f := &s.fields[i]
		p, err := ex.typeSchema(s, f, f.Type)
		if err != nil {
			return nil, err
		}
		if !f.Mutable {
			p.ReadOnly = true
		}
		out.Properties[f.Name] = p
		if f.Required() && !s.partial {
			out.Required = append(out.Required, f.Name)
		}
	}
	if s.unknown == UnknownStrict {
		out.AdditionalProperties = false
	}
	return out, nil
}

func (ex *exporter) typeSchema(s *Schema, f *Field, t Type) (*js.Schema, error) {
	switch t.kind {
	case KindOptional:
		inner, err := ex.typeSchema(s, f, *t.elem)
		if err != nil {
			return nil, err
		}
		return js.Nullable(inner), nil
	case KindString:
		return &js.Schema{Type: "string"}, nil
	case KindInt:
		return &js.Schema{Type: "integer"}, nil
	case KindFloat:
		return &js.Schema{Type: "number"}, nil
	case KindBool:
		return &js.Schema{Type: "boolean"}, nil
	case KindTime:
		return &js.Schema{Type: "string", Format: "date-time"}, nil
	case KindList:
		items, err := ex.typeSchema(s, f, *t.elem)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "array", Items: items}, nil
	case KindObject:
		ns := t.Schema()
		if ns == nil {
			return nil, &SchemaError{Schema: s.name, Field: f.Name, Reason: "lazy nested schema resolved to nil"}
		}
		return ex.ref(ns)
	}
	return nil, &SchemaError{Schema: s.name, Field: f.Name, Reason: "unsupported type " + t.kind.String()}
}

// ref registers ns under $defs on first sight and returns a reference to it.
func (ex *exporter) ref(ns *Schema) (*js.Schema, error) {
	if r, ok := ex.refs[ns]; ok {
		return &js.Schema{Ref: r}, nil
	}
	name := ns.name
	for n := 2; ex.names[name]; n++ {
		name = ns.name + "_" + strconv.Itoa(n)
	}
	ex.names[name] = true
	r := "#/$defs/" + name
	ex.refs[ns] = r
	def, err := ex.object(ns)
	if err != nil {
		return nil, err
	}
	ex.defs[name] = def
	return &js.Schema{Ref: r}, nil
}
