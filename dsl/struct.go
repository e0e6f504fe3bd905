package dsl

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/aarondl/null/v8"

	"github.com/reoring/godto"
)

var (
	timeType = reflect.TypeOf(time.Time{})
	nullPkg  = reflect.TypeOf(null.String{}).PkgPath()
)

// derived caches schemas derived from plain struct types (no overrides).
var derived sync.Map // map[reflect.Type]*godto.Schema

type structBuilder[T any] struct {
	name      string
	overrides map[string]Fielder
	validate  map[string][]func(any) bool
	coerce    map[string]func(any) (any, error)
	opt       godto.SchemaOpt
}

// StructOf derives a schema from the exported fields of struct T. Keys follow
// ResolveStructKey; the dto tag option "mutable" makes a field writable.
//
// Type mapping: strings, integers, floats, bools and time.Time map to the
// matching kinds; pointers and github.com/aarondl/null/v8 types map to
// optional fields; nested structs map to nested DTOs; slices map to lists.
// Other Go types fail with *godto.SchemaError.
func StructOf[T any]() *structBuilder[T] {
	return &structBuilder[T]{
		overrides: map[string]Fielder{},
		validate:  map[string][]func(any) bool{},
		coerce:    map[string]func(any) (any, error){},
	}
}

// Name overrides the schema name, which defaults to the struct type name.
func (b *structBuilder[T]) Name(name string) *structBuilder[T] {
	b.name = name
	return b
}

// Field replaces the derived declaration of key.
func (b *structBuilder[T]) Field(key string, spec Fielder) *structBuilder[T] {
	b.overrides[key] = spec
	return b
}

// Validate adds a predicate to the derived declaration of key.
func (b *structBuilder[T]) Validate(key string, fn func(any) bool) *structBuilder[T] {
	if fn != nil {
		b.validate[key] = append(b.validate[key], fn)
	}
	return b
}

// Coerce sets the coercion of the derived declaration of key.
func (b *structBuilder[T]) Coerce(key string, fn func(any) (any, error)) *structBuilder[T] {
	b.coerce[key] = fn
	return b
}

func (b *structBuilder[T]) Partial() *structBuilder[T] {
	b.opt.Partial = true
	return b
}

func (b *structBuilder[T]) Strict() *structBuilder[T] {
	b.opt.Unknown = godto.UnknownStrict
	return b
}

// Build derives the schema.
func (b *structBuilder[T]) Build() (*godto.Schema, error) {
	rt := structType[T]()
	if rt == nil {
		var zero T
		return nil, &godto.SchemaError{Schema: fmt.Sprintf("%T", zero), Reason: "StructOf requires a struct type"}
	}
	d := &deriver{inProgress: map[reflect.Type]**godto.Schema{}}
	name := b.name
	if name == "" {
		name = rt.Name()
	}
	holder := new(*godto.Schema)
	d.inProgress[rt] = holder
	fields, err := d.fields(name, rt)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(fields))
	for i := range fields {
		f := &fields[i]
		known[f.Name] = true
		if spec, ok := b.overrides[f.Name]; ok {
			if isNilFielder(spec) {
				return nil, &godto.SchemaError{Schema: name, Field: f.Name, Reason: "override is nil"}
			}
			*f = spec.Descriptor(f.Name)
		}
		if fn, ok := b.coerce[f.Name]; ok {
			f.Coerce = fn
		}
		if vs := b.validate[f.Name]; len(vs) > 0 {
			f.Validator = andValidators(f.Validator, vs)
		}
	}
	for _, keys := range []map[string]bool{keySet(b.overrides), keySet(b.validate), keySet(b.coerce)} {
		for k := range keys {
			if !known[k] {
				return nil, &godto.SchemaError{Schema: name, Field: k, Reason: "no such struct field"}
			}
		}
	}
	s, err := godto.NewSchema(name, fields, b.opt)
	if err != nil {
		return nil, err
	}
	*holder = s
	return s, nil
}

// MustBuild is like Build but panics on error.
func (b *structBuilder[T]) MustBuild() *godto.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Bind builds the schema and binds it to T.
func (b *structBuilder[T]) Bind() (*Typed[T], error) {
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	return Bind[T](s)
}

// MustBind is like Bind but panics on error.
func (b *structBuilder[T]) MustBind() *Typed[T] {
	t, err := b.Bind()
	if err != nil {
		panic(err)
	}
	return t
}

func keySet[V any](m map[string]V) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func andValidators(first func(any) bool, more []func(any) bool) func(any) bool {
	return func(v any) bool {
		if first != nil && !first(v) {
			return false
		}
		for _, p := range more {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// structType returns the struct type behind T (or *T), or nil.
func structType[T any]() reflect.Type {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct || rt == timeType || isNullType(rt) {
		return nil
	}
	return rt
}

// isNullType reports whether rt is one of the aarondl/null wrappers: a struct
// holding the value in its first field and a Valid flag.
func isNullType(rt reflect.Type) bool {
	if rt.Kind() != reflect.Struct || rt.PkgPath() != nullPkg || rt.NumField() != 2 {
		return false
	}
	v, ok := rt.FieldByName("Valid")
	return ok && v.Type.Kind() == reflect.Bool && v.Index[0] == 1
}

// deriver maps Go types to declared types for one StructOf build. Structs
// being derived further up the stack are referenced lazily.
type deriver struct {
	inProgress map[reflect.Type]**godto.Schema
}

func (d *deriver) fields(schema string, rt reflect.Type) ([]godto.Field, error) {
	var out []godto.Field
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key, mutable := godto.ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		t, err := d.typeOf(sf.Type)
		if err != nil {
			return nil, &godto.SchemaError{Schema: schema, Field: key, Reason: err.Error()}
		}
		out = append(out, godto.Field{Name: key, Type: t, Mutable: mutable})
	}
	return out, nil
}

func (d *deriver) typeOf(rt reflect.Type) (godto.Type, error) {
	switch {
	case rt == timeType:
		return godto.Time(), nil
	case isNullType(rt):
		inner, err := d.typeOf(rt.Field(0).Type)
		if err != nil {
			return godto.Type{}, err
		}
		return godto.Optional(inner), nil
	}
	switch rt.Kind() {
	case reflect.String:
		return godto.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return godto.Int(), nil
	case reflect.Float32, reflect.Float64:
		return godto.Float(), nil
	case reflect.Bool:
		return godto.Bool(), nil
	case reflect.Pointer:
		inner, err := d.typeOf(rt.Elem())
		if err != nil {
			return godto.Type{}, err
		}
		if inner.IsOptional() {
			return godto.Type{}, fmt.Errorf("pointer to optional type %s", rt.Elem())
		}
		return godto.Optional(inner), nil
	case reflect.Slice:
		elem, err := d.typeOf(rt.Elem())
		if err != nil {
			return godto.Type{}, err
		}
		return godto.List(elem), nil
	case reflect.Struct:
		return d.nested(rt)
	}
	return godto.Type{}, fmt.Errorf("unsupported Go type %s", rt)
}

func (d *deriver) nested(rt reflect.Type) (godto.Type, error) {
	if holder, ok := d.inProgress[rt]; ok {
		return godto.Lazy(func() *godto.Schema { return *holder }), nil
	}
	if s, ok := derived.Load(rt); ok {
		return godto.Object(s.(*godto.Schema)), nil
	}
	holder := new(*godto.Schema)
	d.inProgress[rt] = holder
	defer delete(d.inProgress, rt)
	fields, err := d.fields(rt.Name(), rt)
	if err != nil {
		return godto.Type{}, err
	}
	s, err := godto.NewSchema(rt.Name(), fields)
	if err != nil {
		return godto.Type{}, err
	}
	*holder = s
	// a schema closing over lazy references is specific to this build
	if !hasLazy(s, map[*godto.Schema]bool{}) {
		actual, _ := derived.LoadOrStore(rt, s)
		s = actual.(*godto.Schema)
	}
	return godto.Object(s), nil
}

func hasLazy(s *godto.Schema, seen map[*godto.Schema]bool) bool {
	if s == nil || seen[s] {
		return false
	}
	seen[s] = true
	for _, f := range s.Fields() {
		t := f.Type.Base()
		for t.Kind() == godto.KindList {
			t, _ = t.Elem()
			t = t.Base()
		}
		if t.Kind() != godto.KindObject {
			continue
		}
		if t.IsLazy() || hasLazy(t.Schema(), seen) {
			return true
		}
	}
	return false
}
