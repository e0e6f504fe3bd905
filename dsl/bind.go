package dsl

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sync"
	"time"

	"github.com/reoring/godto"
)

// Typed binds a schema to struct type T. Decode and Encode move values
// between *godto.Instance and T using ResolveStructKey for the key mapping.
type Typed[T any] struct {
	schema *godto.Schema
	rt     reflect.Type
	ptr    bool // T is *struct
}

// Bind binds s to struct type T (or *T). Every schema field must map onto a
// struct field of a compatible Go type.
func Bind[T any](s *godto.Schema) (*Typed[T], error) {
	if s == nil {
		return nil, &godto.SchemaError{Schema: "<nil>", Reason: "Bind requires a schema"}
	}
	rt := structType[T]()
	if rt == nil {
		var zero T
		return nil, &godto.SchemaError{Schema: s.Name(), Reason: fmt.Sprintf("Bind requires a struct type, got %T", zero)}
	}
	if err := checkBinding(s, rt, map[*godto.Schema]bool{}); err != nil {
		return nil, err
	}
	return &Typed[T]{schema: s, rt: rt, ptr: reflect.TypeOf((*T)(nil)).Elem().Kind() == reflect.Pointer}, nil
}

// MustBind is like Bind but panics on error.
func MustBind[T any](s *godto.Schema) *Typed[T] {
	t, err := Bind[T](s)
	if err != nil {
		panic(err)
	}
	return t
}

// Schema returns the bound schema.
func (t *Typed[T]) Schema() *godto.Schema { return t.schema }

// Parse validates v against the schema and decodes the instance into T.
func (t *Typed[T]) Parse(ctx context.Context, v any) (T, error) {
	inst, err := t.schema.Parse(ctx, v)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.Decode(inst)
}

// FromJSON parses JSON text and decodes the instance into T.
func (t *Typed[T]) FromJSON(ctx context.Context, data []byte, opts ...godto.ParseOpt) (T, error) {
	inst, err := godto.FromJSON(ctx, t.schema, data, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.Decode(inst)
}

// FromJSONReader is FromJSON over an io.Reader.
func (t *Typed[T]) FromJSONReader(ctx context.Context, r io.Reader, opts ...godto.ParseOpt) (T, error) {
	inst, err := godto.FromJSONReader(ctx, t.schema, r, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.Decode(inst)
}

// Decode copies the fields of inst into a new T. Absent and null fields leave
// the zero value (nil pointers, invalid null types).
func (t *Typed[T]) Decode(inst *godto.Instance) (T, error) {
	var out T
	if inst == nil || inst.Schema() != t.schema {
		return out, &godto.InvalidTypeError{Schema: t.schema.Name(), Path: "/", Expected: t.schema.Name(), Actual: describe(inst)}
	}
	dst := reflect.New(t.rt).Elem()
	if err := decodeStruct(dst, inst); err != nil {
		return out, err
	}
	if t.ptr {
		reflect.ValueOf(&out).Elem().Set(dst.Addr())
	} else {
		reflect.ValueOf(&out).Elem().Set(dst)
	}
	return out, nil
}

// Encode renders v as a mapping and parses it with the schema, so the result
// satisfies every declaration.
func (t *Typed[T]) Encode(v T) (*godto.Instance, error) {
	rv := reflect.ValueOf(v)
	if t.ptr {
		if rv.IsNil() {
			return nil, &godto.InvalidTypeError{Schema: t.schema.Name(), Path: "/", Expected: t.schema.Name(), Actual: "null"}
		}
		rv = rv.Elem()
	}
	return t.schema.Parse(context.Background(), encodeStruct(rv, t.schema))
}

func describe(inst *godto.Instance) string {
	if inst == nil {
		return "null"
	}
	return inst.Schema().Name()
}

// fieldIndex maps resolved keys to struct field indexes, cached per type.
var fieldIndex sync.Map // map[reflect.Type]map[string]int

func keysOf(rt reflect.Type) map[string]int {
	if m, ok := fieldIndex.Load(rt); ok {
		return m.(map[string]int)
	}
	m := make(map[string]int, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if key, _ := godto.ResolveStructKey(sf); key != "-" {
			m[key] = i
		}
	}
	actual, _ := fieldIndex.LoadOrStore(rt, m)
	return actual.(map[string]int)
}

// checkBinding verifies that every field of s maps onto rt.
func checkBinding(s *godto.Schema, rt reflect.Type, seen map[*godto.Schema]bool) error {
	if seen[s] {
		return nil
	}
	seen[s] = true
	keys := keysOf(rt)
	for _, f := range s.Fields() {
		i, ok := keys[f.Name]
		if !ok {
			return &godto.SchemaError{Schema: s.Name(), Field: f.Name, Reason: fmt.Sprintf("no field of %s maps to this key", rt)}
		}
		if err := checkType(f.Type, rt.Field(i).Type, seen); err != nil {
			return &godto.SchemaError{Schema: s.Name(), Field: f.Name, Reason: err.Error()}
		}
	}
	return nil
}

func checkType(t godto.Type, gt reflect.Type, seen map[*godto.Schema]bool) error {
	if t.IsOptional() {
		switch {
		case isNullType(gt):
			return checkType(t.Base(), gt.Field(0).Type, seen)
		case gt.Kind() == reflect.Pointer:
			return checkType(t.Base(), gt.Elem(), seen)
		case gt.Kind() == reflect.Slice, gt.Kind() == reflect.Interface:
		default:
			return fmt.Errorf("optional field needs a pointer, slice or null type, got %s", gt)
		}
	}
	b := t.Base()
	if gt.Kind() == reflect.Interface {
		return nil
	}
	ok := false
	switch b.Kind() {
	case godto.KindString:
		ok = gt.Kind() == reflect.String
	case godto.KindInt:
		ok = isIntKind(gt.Kind())
	case godto.KindFloat:
		ok = gt.Kind() == reflect.Float32 || gt.Kind() == reflect.Float64
	case godto.KindBool:
		ok = gt.Kind() == reflect.Bool
	case godto.KindTime:
		ok = gt == timeType
	case godto.KindObject:
		st := gt
		if st.Kind() == reflect.Pointer {
			st = st.Elem()
		}
		if st.Kind() != reflect.Struct {
			break
		}
		ns := b.Schema()
		if ns == nil {
			return fmt.Errorf("nested schema is nil")
		}
		return checkBinding(ns, st, seen)
	case godto.KindList:
		if gt.Kind() != reflect.Slice {
			break
		}
		elem, _ := b.Elem()
		return checkType(elem, gt.Elem(), seen)
	}
	if !ok {
		return fmt.Errorf("cannot hold %s in %s", t, gt)
	}
	return nil
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func decodeStruct(dst reflect.Value, inst *godto.Instance) error {
	keys := keysOf(dst.Type())
	for _, name := range inst.Fields() {
		i, ok := keys[name]
		if !ok {
			continue
		}
		v, _ := inst.Get(name)
		if err := assign(dst.Field(i), v); err != nil {
			return fmt.Errorf("dsl: decode %s.%s: %w", inst.Schema().Name(), name, err)
		}
	}
	return nil
}

// assign stores a validated value into dst, which passed checkType.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	dt := dst.Type()
	switch {
	case isNullType(dt):
		if err := assign(dst.Field(0), v); err != nil {
			return err
		}
		dst.Field(1).SetBool(true)
		return nil
	case dt == timeType:
		dst.Set(reflect.ValueOf(v))
		return nil
	}
	switch dt.Kind() {
	case reflect.Interface:
		dst.Set(reflect.ValueOf(v))
	case reflect.Pointer:
		p := reflect.New(dt.Elem())
		if err := assign(p.Elem(), v); err != nil {
			return err
		}
		dst.Set(p)
	case reflect.String:
		dst.SetString(v.(string))
	case reflect.Bool:
		dst.SetBool(v.(bool))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.(int64)
		if dst.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, dt)
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := v.(int64)
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return fmt.Errorf("%d overflows %s", n, dt)
		}
		dst.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		dst.SetFloat(v.(float64))
	case reflect.Struct:
		return decodeStruct(dst, v.(*godto.Instance))
	case reflect.Slice:
		xs := v.([]any)
		out := reflect.MakeSlice(dt, len(xs), len(xs))
		for i, x := range xs {
			if err := assign(out.Index(i), x); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		dst.Set(out)
	default:
		return fmt.Errorf("unsupported Go type %s", dt)
	}
	return nil
}

func encodeStruct(rv reflect.Value, s *godto.Schema) map[string]any {
	keys := keysOf(rv.Type())
	out := make(map[string]any, s.Len())
	for _, f := range s.Fields() {
		if i, ok := keys[f.Name]; ok {
			out[f.Name] = encodeValue(rv.Field(i), f.Type)
		}
	}
	return out
}

// encodeValue renders rv as input for a field of type t. A nil slice is null
// for an optional list and an empty list otherwise.
func encodeValue(rv reflect.Value, t godto.Type) any {
	rt := rv.Type()
	switch {
	case isNullType(rt):
		if !rv.Field(1).Bool() {
			return nil
		}
		return encodeValue(rv.Field(0), t)
	case rt == timeType:
		return rv.Interface().(time.Time)
	}
	switch rt.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return encodeValue(rv.Elem(), t)
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Struct:
		if ns := t.Schema(); ns != nil {
			return encodeStruct(rv, ns)
		}
	case reflect.Slice:
		if rv.IsNil() && t.IsOptional() {
			return nil
		}
		elem, _ := t.Elem()
		xs := make([]any, rv.Len())
		for i := range xs {
			xs[i] = encodeValue(rv.Index(i), elem)
		}
		return xs
	}
	return rv.Interface()
}
