package godto

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// site identifies the field being resolved, for error reporting.
type site struct {
	schema string
	field  string
}

func (st site) mismatch(path string, t Type, v any) error {
	return &InvalidTypeError{Schema: st.schema, Field: st.field, Path: rootIfEmpty(path), Expected: t.String(), Actual: typeName(v), Value: v}
}

// conform checks v against the unwrapped type t and returns the stored
// representation. Nested mappings are parsed with the nested schema.
func conform(ctx context.Context, st site, t Type, v any, path string) (any, error) {
	switch t.kind {
	case KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
		if rv := reflect.ValueOf(v); rv.IsValid() && rv.Kind() == reflect.String && !isNumber(v) {
			return rv.String(), nil
		}
	case KindInt:
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	case KindFloat:
		if f, ok := toFloat64(v); ok {
			return f, nil
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		if rv := reflect.ValueOf(v); rv.IsValid() && rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
	case KindTime:
		switch tv := v.(type) {
		case time.Time:
			return tv, nil
		case string:
			if ts, err := time.Parse(time.RFC3339Nano, tv); err == nil {
				return ts, nil
			}
		}
	case KindObject:
		return conformObject(ctx, st, t, v, path)
	case KindList:
		return conformList(ctx, st, t, v, path)
	}
	return nil, st.mismatch(path, t, v)
}

func conformObject(ctx context.Context, st site, t Type, v any, path string) (any, error) {
	ns := t.Schema()
	if ns == nil {
		return nil, &SchemaError{Schema: st.schema, Field: st.field, Reason: "lazy nested schema resolved to nil"}
	}
	if inst, ok := v.(*Instance); ok {
		if inst != nil && inst.schema == ns {
			return inst.clone(), nil
		}
		return nil, st.mismatch(path, t, v)
	}
	m, ok := asMapping(v)
	if !ok {
		return nil, st.mismatch(path, t, v)
	}
	return ns.parseObject(ctx, m, path)
}

func conformList(ctx context.Context, st site, t Type, v any, path string) (any, error) {
	if v == nil {
		return nil, st.mismatch(path, t, v)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, st.mismatch(path, t, v)
	}
	elem := *t.elem
	out := make([]any, rv.Len())
	for i := range out {
		ev := rv.Index(i).Interface()
		ep := pointerIndex(path, i)
		if ev == nil {
			if !elem.IsOptional() {
				return nil, st.mismatch(ep, elem, nil)
			}
			continue
		}
		cv, err := conform(ctx, st, elem.Base(), ev, ep)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}

// asMapping accepts map[string]any and other maps keyed by strings.
func asMapping(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func isNumber(v any) bool {
	_, ok := v.(json.Number)
	return ok
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(string(n), 10, 64)
		if err == nil {
			return i, true
		}
		// 1e3 is integral but not parseable as an integer literal
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	case bool:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// typeName describes a runtime value using declared-type vocabulary.
func typeName(v any) string {
	switch tv := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number:
		return "number"
	case time.Time:
		return "time"
	case *Instance:
		if tv == nil || tv.schema == nil {
			return "object"
		}
		return tv.schema.name
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	}
	return fmt.Sprintf("%T", v)
}
