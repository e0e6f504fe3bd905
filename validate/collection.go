package validate

import (
	"fmt"

	"github.com/reoring/godto"
)

// MinItems accepts lists with at least n elements.
func MinItems(n int) func([]any) bool {
	return func(xs []any) bool { return len(xs) >= n }
}

// MaxItems accepts lists with at most n elements.
func MaxItems(n int) func([]any) bool {
	return func(xs []any) bool { return len(xs) <= n }
}

// Each accepts lists whose elements of type T all satisfy p. Elements of other
// types, including nil, are rejected.
func Each[T any](p func(T) bool) func([]any) bool {
	return func(xs []any) bool {
		for _, x := range xs {
			tv, ok := x.(T)
			if !ok || !p(tv) {
				return false
			}
		}
		return true
	}
}

// UniqueBy accepts lists of nested DTOs whose values under field are pairwise
// distinct. Elements lacking the field are skipped.
// Note: keys are compared by their printed form, so prefer a field of a single
// scalar kind.
func UniqueBy(field string) func([]any) bool {
	return func(xs []any) bool {
		seen := make(map[string]struct{}, len(xs))
		for _, x := range xs {
			inst, ok := x.(*godto.Instance)
			if !ok || inst == nil {
				continue
			}
			v, ok := inst.Get(field)
			if !ok {
				continue
			}
			key := fmt.Sprint(v)
			if _, dup := seen[key]; dup {
				return false
			}
			seen[key] = struct{}{}
		}
		return true
	}
}
