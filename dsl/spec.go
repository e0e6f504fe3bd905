package dsl

import (
	"reflect"
	"time"

	"github.com/reoring/godto"
)

// Fielder is a field declaration that can describe itself under a key.
// *Spec[T] implements it.
type Fielder interface {
	Descriptor(key string) godto.Field
}

// isNilFielder also catches a nil *Spec[T] stored in the interface.
func isNilFielder(f Fielder) bool {
	if f == nil {
		return true
	}
	rv := reflect.ValueOf(f)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Spec declares one field: its type, mutability, validators and coercion.
// T is the stored Go type the validators receive. Chained methods modify and
// return the receiver.
type Spec[T any] struct {
	typ        godto.Type
	mutable    bool
	validators []func(T) bool
	coerce     func(any) (any, error)
}

func newSpec[T any](t godto.Type) *Spec[T] { return &Spec[T]{typ: t} }

// String declares a string field.
func String() *Spec[string] { return newSpec[string](godto.String()) }

// Int declares an integer field, stored as int64.
func Int() *Spec[int64] { return newSpec[int64](godto.Int()) }

// Float declares a floating point field, stored as float64.
func Float() *Spec[float64] { return newSpec[float64](godto.Float()) }

// Bool declares a boolean field.
func Bool() *Spec[bool] { return newSpec[bool](godto.Bool()) }

// Time declares a timestamp field; text input must be RFC 3339.
func Time() *Spec[time.Time] { return newSpec[time.Time](godto.Time()) }

// Nested declares a nested DTO field validated by s.
func Nested(s *godto.Schema) *Spec[*godto.Instance] {
	return newSpec[*godto.Instance](godto.Object(s))
}

// Ref declares a nested DTO field whose schema is looked up on first use,
// for recursive or forward references.
func Ref(fn func() *godto.Schema) *Spec[*godto.Instance] {
	return newSpec[*godto.Instance](godto.Lazy(fn))
}

// List declares a list field. Validators and coercion declared on elem apply
// to every non-null element.
func List[T any](elem *Spec[T]) *Spec[[]any] {
	out := newSpec[[]any](godto.List(elem.typ))
	if elem.coerce != nil {
		ec := elem.coerce
		out.coerce = func(v any) (any, error) {
			rv := reflect.ValueOf(v)
			if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
				return v, nil
			}
			xs := make([]any, rv.Len())
			for i := range xs {
				e := rv.Index(i).Interface()
				if e == nil {
					continue
				}
				ce, err := ec(e)
				if err != nil {
					return nil, err
				}
				xs[i] = ce
			}
			return xs, nil
		}
	}
	if len(elem.validators) > 0 {
		ev := elem.validators
		out.validators = append(out.validators, func(xs []any) bool {
			for _, x := range xs {
				if x == nil {
					continue
				}
				tv, ok := x.(T)
				if !ok || !all(ev, tv) {
					return false
				}
			}
			return true
		})
	}
	return out
}

// Optional lets the field be absent or null. Validators only see non-null
// values.
func Optional[T any](s *Spec[T]) *Spec[T] {
	out := *s
	out.typ = godto.Optional(s.typ)
	out.validators = append([]func(T) bool(nil), s.validators...)
	return &out
}

// Validate adds a predicate over the coerced value. Multiple predicates must
// all hold.
func (s *Spec[T]) Validate(fn func(T) bool) *Spec[T] {
	if fn != nil {
		s.validators = append(s.validators, fn)
	}
	return s
}

// Coerce sets the function applied to raw input before the type check. It
// accepts the functions of package coerce directly.
func (s *Spec[T]) Coerce(fn func(any) (any, error)) *Spec[T] {
	s.coerce = fn
	return s
}

// CoerceTo is Coerce with a typed result.
func (s *Spec[T]) CoerceTo(fn func(any) (T, error)) *Spec[T] {
	if fn == nil {
		s.coerce = nil
		return s
	}
	s.coerce = func(v any) (any, error) { return fn(v) }
	return s
}

// Mutable allows writes after construction.
func (s *Spec[T]) Mutable() *Spec[T] {
	s.mutable = true
	return s
}

// Type returns the declared type.
func (s *Spec[T]) Type() godto.Type { return s.typ }

// Descriptor implements Fielder.
func (s *Spec[T]) Descriptor(key string) godto.Field {
	f := godto.Field{Name: key, Type: s.typ, Mutable: s.mutable, Coerce: s.coerce}
	if len(s.validators) > 0 {
		vs := append([]func(T) bool(nil), s.validators...)
		f.Validator = func(v any) bool {
			tv, ok := v.(T)
			return ok && all(vs, tv)
		}
	}
	return f
}

func all[T any](ps []func(T) bool, v T) bool {
	for _, p := range ps {
		if !p(v) {
			return false
		}
	}
	return true
}
