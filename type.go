package godto

import "fmt"

// Kind enumerates the declared field kinds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindInt   // stored as int64
	KindFloat // stored as float64
	KindBool
	KindTime   // stored as time.Time
	KindObject // nested DTO, stored as *Instance
	KindList   // stored as []any
	KindOptional
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	case KindOptional:
		return "optional"
	default:
		return "invalid"
	}
}

// Type is a declared field type. The zero Type is invalid and rejected by
// NewSchema.
type Type struct {
	kind   Kind
	elem   *Type          // KindList element or KindOptional inner type
	schema func() *Schema // KindObject target, resolved lazily
	lazy   bool
}

// String declares a string field.
func String() Type { return Type{kind: KindString} }

// Int declares an integer field.
func Int() Type { return Type{kind: KindInt} }

// Float declares a floating point field. Integral input is widened.
func Float() Type { return Type{kind: KindFloat} }

// Bool declares a boolean field.
func Bool() Type { return Type{kind: KindBool} }

// Time declares a timestamp field; text input must be RFC 3339.
func Time() Type { return Type{kind: KindTime} }

// Object declares a nested DTO field validated by s.
func Object(s *Schema) Type {
	if s == nil {
		return Type{kind: KindObject}
	}
	return Type{kind: KindObject, schema: func() *Schema { return s }}
}

// Lazy declares a nested DTO field whose schema is resolved on first use, which
// allows a schema to refer to itself or to schemas declared later.
func Lazy(fn func() *Schema) Type {
	return Type{kind: KindObject, schema: fn, lazy: true}
}

// List declares a list field whose elements conform to elem.
func List(elem Type) Type { return Type{kind: KindList, elem: &elem} }

// Optional wraps t so that the field may be absent or null.
func Optional(t Type) Type { return Type{kind: KindOptional, elem: &t} }

// Kind reports the kind of the unwrapped type.
func (t Type) Kind() Kind { return t.Base().kind }

// IsOptional reports whether the type is optional-wrapped.
func (t Type) IsOptional() bool { return t.kind == KindOptional }

// Base unwraps an optional type.
func (t Type) Base() Type {
	if t.kind == KindOptional && t.elem != nil {
		return *t.elem
	}
	return t
}

// Elem returns the element type of a list.
func (t Type) Elem() (Type, bool) {
	b := t.Base()
	if b.kind != KindList || b.elem == nil {
		return Type{}, false
	}
	return *b.elem, true
}

// IsLazy reports whether the nested schema is resolved on first use.
func (t Type) IsLazy() bool { return t.Base().lazy }

// Schema returns the nested schema of an object type. Lazy types are resolved
// by this call.
func (t Type) Schema() *Schema {
	b := t.Base()
	if b.kind != KindObject || b.schema == nil {
		return nil
	}
	return b.schema()
}

func (t Type) String() string {
	switch t.kind {
	case KindOptional:
		if t.elem == nil {
			return "optional()"
		}
		return "optional(" + t.elem.String() + ")"
	case KindList:
		if t.elem == nil {
			return "list()"
		}
		return "list(" + t.elem.String() + ")"
	case KindObject:
		// resolving a lazy schema here could recurse while the schema is built
		if t.schema == nil || t.lazy {
			return "object"
		}
		if s := t.schema(); s != nil {
			return s.Name()
		}
		return "object"
	default:
		return t.kind.String()
	}
}

// check reports why t cannot be declared, or "" when it can.
func (t Type) check() string {
	switch t.kind {
	case KindString, KindInt, KindFloat, KindBool, KindTime:
		return ""
	case KindObject:
		if t.schema == nil {
			return "nested type has no schema"
		}
		if !t.lazy && t.schema() == nil {
			return "nested type has no schema"
		}
		return ""
	case KindList:
		if t.elem == nil {
			return "list has no element type"
		}
		if r := t.elem.check(); r != "" {
			return "list element: " + r
		}
		return ""
	case KindOptional:
		if t.elem == nil {
			return "optional wraps no type"
		}
		if t.elem.kind == KindOptional {
			return "optional wraps an optional type"
		}
		return t.elem.check()
	default:
		return fmt.Sprintf("unsupported type %s", t.kind)
	}
}
