package godto

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type instanceState uint8

const (
	stateConstructing instanceState = iota
	stateValidated
)

// Instance is a validated DTO value. Every stored value conforms to its
// declared type and satisfies its validator; fields omitted by a partial
// schema are absent. An Instance is owned by its creator and is not safe for
// concurrent writes.
type Instance struct {
	schema *Schema
	values map[string]any
	state  instanceState
}

func newInstance(s *Schema) *Instance {
	return &Instance{schema: s, values: make(map[string]any, len(s.fields)), state: stateConstructing}
}

// Schema returns the schema the instance was built from.
func (i *Instance) Schema() *Schema { return i.schema }

// Set writes a field after construction. Immutable fields fail with
// *ImmutabilityError; mutable fields run the coercion, type and validator
// pipeline again and keep their previous value when it fails.
func (i *Instance) Set(name string, v any) error {
	return i.SetContext(context.Background(), name, v)
}

// SetContext is Set with a context for nested parsing of mapping values.
func (i *Instance) SetContext(ctx context.Context, name string, v any) error {
	idx, ok := i.schema.index[name]
	if !ok {
		return toIssues(&UnknownFieldError{Schema: i.schema.name, Field: name, Path: pointerFor("", name)})
	}
	f := &i.schema.fields[idx]
	if !f.Mutable && i.state == stateValidated {
		return toIssues(&ImmutabilityError{Schema: i.schema.name, Field: name})
	}
	val, err := i.schema.resolve(ctx, f, v, pointerFor("", name))
	if err != nil {
		return toIssues(err)
	}
	i.values[name] = val
	return nil
}

// Get returns the stored value of a field. ok is false when the field is
// absent (partial instances) or undeclared; optional fields that were null
// report (nil, true). Lists are returned as copies; a nested *Instance is
// returned as is and guards its own fields.
func (i *Instance) Get(name string) (any, bool) {
	v, ok := i.values[name]
	return exposed(v), ok
}

// exposed copies lists so callers cannot write around Set.
func exposed(v any) any {
	if xs, ok := v.([]any); ok {
		return cloneValue(xs)
	}
	return v
}

// Has reports whether the field is present.
func (i *Instance) Has(name string) bool {
	_, ok := i.values[name]
	return ok
}

// IsNull reports whether the field is present and null.
func (i *Instance) IsNull(name string) bool {
	v, ok := i.values[name]
	return ok && v == nil
}

// Value returns the field as T. ok is false when the field is absent, null,
// or stored with a different type.
func Value[T any](i *Instance, name string) (T, bool) {
	var zero T
	if i == nil {
		return zero, false
	}
	v, ok := i.values[name]
	if !ok || v == nil {
		return zero, false
	}
	tv, ok := exposed(v).(T)
	return tv, ok
}

func (i *Instance) String(name string) (string, bool)    { return Value[string](i, name) }
func (i *Instance) Int(name string) (int64, bool)        { return Value[int64](i, name) }
func (i *Instance) Float(name string) (float64, bool)    { return Value[float64](i, name) }
func (i *Instance) Bool(name string) (bool, bool)        { return Value[bool](i, name) }
func (i *Instance) Time(name string) (time.Time, bool)   { return Value[time.Time](i, name) }
func (i *Instance) Object(name string) (*Instance, bool) { return Value[*Instance](i, name) }
func (i *Instance) List(name string) ([]any, bool)       { return Value[[]any](i, name) }

// Fields lists the present field names in declaration order.
func (i *Instance) Fields() []string {
	out := make([]string, 0, len(i.values))
	for _, f := range i.schema.fields {
		if _, ok := i.values[f.Name]; ok {
			out = append(out, f.Name)
		}
	}
	return out
}

// ToMap renders the instance as a plain mapping; nested instances become
// nested mappings. For schemas without coercion, parsing the result yields an
// Instance equal to the receiver.
func (i *Instance) ToMap() map[string]any {
	out := make(map[string]any, len(i.values))
	for k, v := range i.values {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch tv := v.(type) {
	case *Instance:
		return tv.ToMap()
	case []any:
		out := make([]any, len(tv))
		for j := range tv {
			out[j] = plainValue(tv[j])
		}
		return out
	default:
		return v
	}
}

// MarshalJSON renders the instance as a JSON object.
func (i *Instance) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.ToMap())
}

// Equal reports whether other has the same schema and field-for-field equal
// values.
func (i *Instance) Equal(other *Instance) bool {
	if i == nil || other == nil {
		return i == other
	}
	if i.schema != other.schema || len(i.values) != len(other.values) {
		return false
	}
	for k, v := range i.values {
		ov, ok := other.values[k]
		if !ok || !equalValue(v, ov) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	switch av := a.(type) {
	case *Instance:
		bv, ok := b.(*Instance)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for j := range av {
			if !equalValue(av[j], bv[j]) {
				return false
			}
		}
		return true
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}

// clone copies the instance so that no two instances share storage. Stored
// scalars are immutable values; lists and nested instances are copied.
func (i *Instance) clone() *Instance {
	out := &Instance{schema: i.schema, values: make(map[string]any, len(i.values)), state: i.state}
	for k, v := range i.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case *Instance:
		return tv.clone()
	case []any:
		out := make([]any, len(tv))
		for j := range tv {
			out[j] = cloneValue(tv[j])
		}
		return out
	default:
		return v
	}
}

// Describe renders the instance as Name{field: value, ...} in declaration
// order.
func (i *Instance) Describe() string {
	b := &strings.Builder{}
	i.writeTo(b)
	return b.String()
}

// GoString implements fmt.GoStringer.
func (i *Instance) GoString() string { return i.Describe() }

func (i *Instance) writeTo(b *strings.Builder) {
	b.WriteString(i.schema.name)
	b.WriteByte('{')
	first := true
	for _, f := range i.schema.fields {
		v, ok := i.values[f.Name]
		if !ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(f.Name)
		b.WriteString(": ")
		writeValue(b, v)
	}
	b.WriteByte('}')
}

func writeValue(b *strings.Builder, v any) {
	switch tv := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		b.WriteString(strconv.Quote(tv))
	case int64:
		b.WriteString(strconv.FormatInt(tv, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(tv, 'g', -1, 64))
	case bool:
		b.WriteString(strconv.FormatBool(tv))
	case time.Time:
		b.WriteString(tv.Format(time.RFC3339Nano))
	case *Instance:
		tv.writeTo(b)
	case []any:
		b.WriteByte('[')
		for j, e := range tv {
			if j > 0 {
				b.WriteString(", ")
			}
			writeValue(b, e)
		}
		b.WriteByte(']')
	default:
		b.WriteString("?")
	}
}
