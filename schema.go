package godto

// Field is the normalized descriptor of one declared attribute.
type Field struct {
	Name string
	Type Type
	// Mutable allows writes after construction. Fields are immutable unless set.
	Mutable bool
	// Validator is a predicate over the coerced value. Nil accepts everything.
	Validator func(any) bool
	// Coerce transforms the raw input value before the type check. Nil is the
	// identity.
	Coerce func(any) (any, error)
}

// Required reports whether the field must be present in the input. It is
// derived from the type: optional-wrapped types are not required.
func (f Field) Required() bool { return !f.Type.IsOptional() }

// Schema maps field names to descriptors for one DTO type. A Schema is
// immutable once NewSchema returns and may be shared between goroutines.
type Schema struct {
	name    string
	fields  []Field
	index   map[string]int
	partial bool
	unknown UnknownPolicy
}

// NewSchema registers a DTO type. Fields keep their declaration order, which
// is the order in which parsing checks them.
func NewSchema(name string, fields []Field, opts ...SchemaOpt) (*Schema, error) {
	if name == "" {
		return nil, &SchemaError{Schema: "<unnamed>", Reason: "schema name is empty"}
	}
	var opt SchemaOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	s := &Schema{
		name:    name,
		fields:  make([]Field, 0, len(fields)),
		index:   make(map[string]int, len(fields)),
		partial: opt.Partial,
		unknown: opt.Unknown,
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, &SchemaError{Schema: name, Reason: "field name is empty"}
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, &SchemaError{Schema: name, Field: f.Name, Reason: "field declared twice"}
		}
		if reason := f.Type.check(); reason != "" {
			return nil, &SchemaError{Schema: name, Field: f.Name, Reason: reason}
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(name string, fields []Field, opts ...SchemaOpt) *Schema {
	s, err := NewSchema(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string           { return s.name }
func (s *Schema) Partial() bool          { return s.partial }
func (s *Schema) Unknown() UnknownPolicy { return s.unknown }
func (s *Schema) Len() int               { return len(s.fields) }

// Fields returns a copy of the descriptors in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a descriptor by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}
