package godto

import (
	"strconv"
	"strings"
)

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// pointerFor appends an object key to a JSON Pointer, escaping per RFC 6901.
func pointerFor(base, key string) string {
	return base + "/" + pointerEscaper.Replace(key)
}

// pointerIndex appends an array index to a JSON Pointer.
func pointerIndex(base string, i int) string {
	return base + "/" + strconv.Itoa(i)
}

// rootIfEmpty renders the document root as "/".
func rootIfEmpty(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
