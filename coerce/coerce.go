// Package coerce provides reusable coercion functions for DTO fields. Each
// function has the shape func(any) (any, error) and can be used directly as
// godto.Field.Coerce or composed with Chain.
package coerce

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Func transforms a raw input value before the type check.
type Func func(any) (any, error)

// ErrUnsupported is returned when a value has a type a coercer cannot read.
var ErrUnsupported = errors.New("coerce: unsupported input type")

func unsupported(target string, v any) error {
	return fmt.Errorf("%w: cannot convert %T to %s", ErrUnsupported, v, target)
}

// Chain composes coercers left to right. The first error aborts; a nil
// output is returned immediately.
func Chain(fns ...Func) Func {
	return func(src any) (any, error) {
		cur := src
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			out, err := fn(cur)
			if err != nil {
				return nil, err
			}
			if out == nil {
				return nil, nil
			}
			cur = out
		}
		return cur, nil
	}
}

// MapString applies f to string inputs and passes other values through.
func MapString(f func(string) string) Func {
	return func(src any) (any, error) {
		if s, ok := src.(string); ok {
			return f(s), nil
		}
		return src, nil
	}
}

// TrimSpace trims surrounding whitespace from string inputs.
func TrimSpace(v any) (any, error) { return MapString(strings.TrimSpace)(v) }

// Int reads integers from numeric strings, JSON numbers and integral floats.
func Int(v any) (any, error) {
	switch tv := v.(type) {
	case string:
		s := strings.TrimSpace(tv)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("coerce: %q is not an integer: %w", tv, err)
		}
		return integral(f)
	case json.Number:
		return Int(string(tv))
	case bool:
		return nil, unsupported("int", v)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return nil, fmt.Errorf("coerce: %d overflows int64", rv.Uint())
		}
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return integral(rv.Float())
	}
	return nil, unsupported("int", v)
}

func integral(f float64) (any, error) {
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return nil, fmt.Errorf("coerce: %v is not an integral value", f)
	}
	return int64(f), nil
}

// Float reads floating point numbers from numeric strings and any Go number.
func Float(v any) (any, error) {
	switch tv := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(tv), 64)
		if err != nil {
			return nil, fmt.Errorf("coerce: %q is not a number: %w", tv, err)
		}
		return f, nil
	case json.Number:
		return Float(string(tv))
	case bool:
		return nil, unsupported("float", v)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return nil, unsupported("float", v)
}

// String renders scalars as text.
func String(v any) (any, error) {
	switch tv := v.(type) {
	case string:
		return tv, nil
	case json.Number:
		return string(tv), nil
	case bool:
		return strconv.FormatBool(tv), nil
	case time.Time:
		return tv.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return tv.String(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	}
	return nil, unsupported("string", v)
}

// Bool reads booleans from the strings accepted by strconv.ParseBool.
func Bool(v any) (any, error) {
	switch tv := v.(type) {
	case bool:
		return tv, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(tv))
		if err != nil {
			return nil, fmt.Errorf("coerce: %q is not a boolean: %w", tv, err)
		}
		return b, nil
	}
	return nil, unsupported("bool", v)
}

// TimeRFC3339 reads RFC 3339 timestamps, with or without fractional seconds.
func TimeRFC3339(v any) (any, error) {
	switch tv := v.(type) {
	case time.Time:
		return tv, nil
	case string:
		t, err := parseRFC3339(strings.TrimSpace(tv))
		if err != nil {
			return nil, fmt.Errorf("coerce: invalid RFC3339 time: %w", err)
		}
		return t, nil
	}
	return nil, unsupported("time", v)
}

// DateLayout returns a coercer reading timestamps in a fixed time.Parse
// layout, such as "20060102".
func DateLayout(layout string) Func {
	return func(v any) (any, error) {
		switch tv := v.(type) {
		case time.Time:
			return tv, nil
		case string:
			t, err := time.Parse(layout, strings.TrimSpace(tv))
			if err != nil {
				return nil, fmt.Errorf("coerce: %q does not match layout %q: %w", tv, layout, err)
			}
			return t, nil
		}
		return nil, unsupported("time", v)
	}
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}
