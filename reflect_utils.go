package godto

import (
	"reflect"
	"strings"
)

// TagName is the struct tag read by ResolveStructKey.
const TagName = "dto"

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// external key used by the DSL and typed binding.
// Priority: dto:"name" > json tag name > field name; "-" disables the field.
// The dto tag option "mutable" marks the field writable after construction.
func ResolveStructKey(sf reflect.StructField) (key string, mutable bool) {
	if dt, ok := sf.Tag.Lookup(TagName); ok {
		if dt == "-" {
			return "-", false
		}
		parts := strings.Split(dt, ",")
		for _, p := range parts[1:] {
			if strings.TrimSpace(p) == "mutable" {
				mutable = true
			}
		}
		if name := strings.TrimSpace(parts[0]); name != "" {
			return name, mutable
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-", mutable
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" {
			return jt, mutable
		}
	}
	return sf.Name, mutable
}
