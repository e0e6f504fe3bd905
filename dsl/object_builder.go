package dsl

import "github.com/reoring/godto"

type objectBuilder struct {
	name   string
	fields []godto.Field
	opt    godto.SchemaOpt
}

// Object creates a new object builder. Unknown keys are ignored unless
// Strict is called.
func Object(name string) *objectBuilder {
	return &objectBuilder{name: name, opt: godto.SchemaOpt{Unknown: godto.UnknownIgnore}}
}

// Field registers a field. Declaration order is the order in which parsing
// checks fields.
func (b *objectBuilder) Field(key string, spec Fielder) *objectBuilder {
	if isNilFielder(spec) {
		// rejected by Build as an invalid type
		b.fields = append(b.fields, godto.Field{Name: key})
		return b
	}
	b.fields = append(b.fields, spec.Descriptor(key))
	return b
}

// Partial tolerates missing fields.
func (b *objectBuilder) Partial() *objectBuilder {
	b.opt.Partial = true
	return b
}

// Strict rejects keys the schema does not declare.
func (b *objectBuilder) Strict() *objectBuilder {
	b.opt.Unknown = godto.UnknownStrict
	return b
}

// Build validates the declarations and returns the schema.
func (b *objectBuilder) Build() (*godto.Schema, error) {
	return godto.NewSchema(b.name, b.fields, b.opt)
}

// MustBuild is like Build but panics on error.
func (b *objectBuilder) MustBuild() *godto.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
