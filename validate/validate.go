// Package validate provides predicate constructors for DTO field validators.
// Predicates are typed (func(T) bool); Untyped adapts one to the
// func(any) bool shape stored in godto.Field.
package validate

import (
	"cmp"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Op defines simple comparison operators for Compare.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// Compare builds a predicate testing v <op> want.
func Compare[T cmp.Ordered](op Op, want T) func(T) bool {
	return func(v T) bool {
		c := cmp.Compare(v, want)
		switch op {
		case OpEq:
			return c == 0
		case OpNe:
			return c != 0
		case OpLt:
			return c < 0
		case OpLe:
			return c <= 0
		case OpGt:
			return c > 0
		case OpGe:
			return c >= 0
		default:
			return false
		}
	}
}

// Gt accepts values strictly greater than n.
func Gt[T cmp.Ordered](n T) func(T) bool { return Compare(OpGt, n) }

// Lt accepts values strictly less than n.
func Lt[T cmp.Ordered](n T) func(T) bool { return Compare(OpLt, n) }

// Min accepts values >= n.
func Min[T cmp.Ordered](n T) func(T) bool { return Compare(OpGe, n) }

// Max accepts values <= n.
func Max[T cmp.Ordered](n T) func(T) bool { return Compare(OpLe, n) }

// Between accepts values in the closed range [lo, hi].
func Between[T cmp.Ordered](lo, hi T) func(T) bool {
	return func(v T) bool { return v >= lo && v <= hi }
}

// OneOf accepts values equal to one of vals.
func OneOf[T comparable](vals ...T) func(T) bool {
	set := make(map[T]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return func(v T) bool {
		_, ok := set[v]
		return ok
	}
}

// NonEmpty rejects strings that are empty after trimming whitespace.
func NonEmpty(s string) bool { return strings.TrimSpace(s) != "" }

// MinLen accepts strings of at least n runes.
func MinLen(n int) func(string) bool {
	return func(s string) bool { return utf8.RuneCountInString(s) >= n }
}

// MaxLen accepts strings of at most n runes.
func MaxLen(n int) func(string) bool {
	return func(s string) bool { return utf8.RuneCountInString(s) <= n }
}

// Pattern accepts strings matching the regular expression expr. It panics
// when expr does not compile, as declarations are made at definition time.
func Pattern(expr string) func(string) bool {
	re := regexp.MustCompile(expr)
	return re.MatchString
}

// All accepts values accepted by every predicate.
func All[T any](ps ...func(T) bool) func(T) bool {
	return func(v T) bool {
		for _, p := range ps {
			if p != nil && !p(v) {
				return false
			}
		}
		return true
	}
}

// Any accepts values accepted by at least one predicate.
func Any[T any](ps ...func(T) bool) func(T) bool {
	return func(v T) bool {
		for _, p := range ps {
			if p != nil && p(v) {
				return true
			}
		}
		return false
	}
}

// Not negates p.
func Not[T any](p func(T) bool) func(T) bool {
	return func(v T) bool { return !p(v) }
}

// Untyped adapts p to func(any) bool. Values of another type are rejected.
func Untyped[T any](p func(T) bool) func(any) bool {
	return func(v any) bool {
		tv, ok := v.(T)
		return ok && p(tv)
	}
}
