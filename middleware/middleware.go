// Package middleware parses HTTP request bodies into godto instances.
package middleware

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reoring/godto"
)

type ctxKeyInstance struct{}

// ContextWithInstance attaches a parsed instance to the context.
func ContextWithInstance(ctx context.Context, inst *godto.Instance) context.Context {
	return context.WithValue(ctx, ctxKeyInstance{}, inst)
}

// InstanceFromContext retrieves the instance stored by Decode.
func InstanceFromContext(ctx context.Context) (*godto.Instance, bool) {
	v, ok := ctx.Value(ctxKeyInstance{}).(*godto.Instance)
	return v, ok && v != nil
}

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Bodies are capped at 1 MiB and 64 levels of nesting
func DefaultParseOpt() godto.ParseOpt {
	return godto.ParseOpt{
		Strictness: godto.Strictness{OnDuplicateKey: godto.Error},
		MaxDepth:   64,
		MaxBytes:   1 << 20,
	}
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []godto.Issue) map[string]any {
	out := make([]map[string]any, 0, len(issues))
	for _, it := range issues {
		e := map[string]any{"path": it.Path, "code": it.Code, "message": it.Message}
		if it.Field != "" {
			e["field"] = it.Field
		}
		out = append(out, e)
	}
	return map[string]any{"issues": out}
}

// Decode returns middleware that parses the request body with s and hands
// the instance to next through the request context. Failures are answered
// with an ErrorPayload body: 413 for oversized input, 400 otherwise.
func Decode(s *godto.Schema, opts ...godto.ParseOpt) func(http.Handler) http.Handler {
	opt := DefaultParseOpt()
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inst, err := godto.FromJSONReader(r.Context(), s, r.Body, opt)
			if err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithInstance(r.Context(), inst)))
		})
	}
}

// WriteError writes err as an ErrorPayload response.
func WriteError(w http.ResponseWriter, err error) {
	iss, ok := godto.AsIssues(err)
	if !ok {
		iss = godto.Issues{godto.IssueOf(err)}
	}
	status := http.StatusBadRequest
	if len(iss) > 0 && iss[0].Code == godto.CodeTruncated {
		status = http.StatusRequestEntityTooLarge
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorPayload(iss))
}
