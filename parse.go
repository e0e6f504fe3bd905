package godto

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"sort"
	"strings"

	eng "github.com/reoring/godto/internal/engine"
)

// FromMap parses an already decoded mapping into an Instance of s.
func FromMap(ctx context.Context, s *Schema, m map[string]any, opts ...ParseOpt) (*Instance, error) {
	if s == nil {
		return nil, singleIssue(CodeSchema, "/", "nil schema")
	}
	if m == nil {
		return nil, toIssues(&InvalidTypeError{Schema: s.name, Path: "/", Expected: s.name, Actual: "null"})
	}
	return s.Parse(withWalk(ctx, lastParseOpt(opts).MaxDepth), m)
}

// FromJSON decodes JSON text and parses the resulting mapping into an
// Instance of s. Numbers are kept as json.Number until a field claims them.
func FromJSON(ctx context.Context, s *Schema, data []byte, opts ...ParseOpt) (*Instance, error) {
	opt := lastParseOpt(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, singleIssue(CodeTruncated, "/", "max bytes exceeded")
	}
	return fromJSON(ctx, s, bytes.NewReader(data), opt)
}

// FromJSONReader is FromJSON over an io.Reader. When MaxBytes is set it
// enforces the size cap before decoding.
func FromJSONReader(ctx context.Context, s *Schema, r io.Reader, opts ...ParseOpt) (*Instance, error) {
	opt := lastParseOpt(opts)
	if opt.MaxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, opt.MaxBytes+1))
		if err != nil {
			return nil, singleIssue(CodeParseError, "/", err.Error())
		}
		if int64(len(data)) > opt.MaxBytes {
			return nil, singleIssue(CodeTruncated, "/", "max bytes exceeded")
		}
		r = bytes.NewReader(data)
	}
	return fromJSON(ctx, s, r, opt)
}

func fromJSON(ctx context.Context, s *Schema, r io.Reader, opt ParseOpt) (*Instance, error) {
	if s == nil {
		return nil, singleIssue(CodeSchema, "/", "nil schema")
	}
	v, err := eng.Decode(r, eng.Options{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		IssueSink:   forwardIssues(opt.IssueSink),
	})
	if err != nil {
		return nil, engineIssues(err)
	}
	return s.Parse(ctx, v)
}

// Parse validates a decoded value (normally map[string]any) against the
// schema and returns a constructed Instance. The first violation, in
// field-declaration order, is returned as Issues wrapping a typed error.
func (s *Schema) Parse(ctx context.Context, v any) (*Instance, error) {
	if v == nil {
		return nil, toIssues(&InvalidTypeError{Schema: s.name, Path: "/", Expected: s.name, Actual: "null"})
	}
	if inst, ok := v.(*Instance); ok && inst != nil {
		if inst.schema != s {
			return nil, toIssues(&InvalidTypeError{Schema: s.name, Path: "/", Expected: s.name, Actual: typeName(v), Value: v})
		}
		return inst.clone(), nil
	}
	m, ok := asMapping(v)
	if !ok {
		return nil, toIssues(&InvalidTypeError{Schema: s.name, Path: "/", Expected: s.name, Actual: typeName(v), Value: v})
	}
	inst, err := s.parseObject(ctx, m, "")
	if err != nil {
		return nil, toIssues(err)
	}
	return inst, nil
}

// parseObject walks the fields in declaration order. path is the JSON Pointer
// of the mapping ("" for the document root).
func (s *Schema) parseObject(ctx context.Context, src map[string]any, path string) (*Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, ok := ctx.Value(walkKey{}).(*walk)
	if !ok {
		w = &walk{}
		ctx = context.WithValue(ctx, walkKey{}, w)
	}
	leave, err := w.enter(src, path)
	if err != nil {
		return nil, err
	}
	defer leave()
	inst := newInstance(s)
	for i := range s.fields {
		f := &s.fields[i]
		fp := pointerFor(path, f.Name)
		raw, exists := src[f.Name]
		if !exists {
			switch {
			case f.Type.IsOptional():
				inst.values[f.Name] = nil
			case s.partial:
				// omitted
			default:
				return nil, &MissingFieldError{Schema: s.name, Field: f.Name, Path: fp}
			}
			continue
		}
		val, err := s.resolve(ctx, f, raw, fp)
		if err != nil {
			return nil, err
		}
		inst.values[f.Name] = val
	}
	if s.unknown == UnknownStrict {
		if k, ok := s.firstUnknown(src); ok {
			return nil, &UnknownFieldError{Schema: s.name, Field: k, Path: pointerFor(path, k)}
		}
	}
	inst.state = stateValidated
	return inst, nil
}

// resolve runs the per-value pipeline shared by parsing and writes:
// null handling, nested delegation, coercion, type conformance, validation.
func (s *Schema) resolve(ctx context.Context, f *Field, raw any, path string) (any, error) {
	st := site{schema: s.name, field: f.Name}
	if raw == nil {
		if f.Type.IsOptional() {
			return nil, nil
		}
		return nil, st.mismatch(path, f.Type, nil)
	}
	base := f.Type.Base()
	v := raw
	if f.Coerce != nil && !isNestedInput(base, raw) {
		cv, err := f.Coerce(raw)
		if err != nil {
			return nil, &InvalidTypeError{Schema: s.name, Field: f.Name, Path: path, Expected: f.Type.String(), Actual: typeName(raw), Value: raw, Cause: err}
		}
		if cv == nil {
			if f.Type.IsOptional() {
				return nil, nil
			}
			return nil, st.mismatch(path, f.Type, nil)
		}
		v = cv
	}
	cv, err := conform(ctx, st, base, v, path)
	if err != nil {
		return nil, err
	}
	if f.Validator != nil && !f.Validator(cv) {
		return nil, &ValidationError{Schema: s.name, Field: f.Name, Path: path, Value: cv}
	}
	return cv, nil
}

type walkKey struct{}

// walk tracks the mappings being parsed by one call, so nesting depth can be
// capped and a mapping that contains itself is reported instead of recursed.
type walk struct {
	maxDepth int
	open     map[uintptr]struct{}
}

func withWalk(ctx context.Context, maxDepth int) context.Context {
	return context.WithValue(ctx, walkKey{}, &walk{maxDepth: maxDepth})
}

func (w *walk) enter(src map[string]any, path string) (func(), error) {
	// container depth matches the JSON engine: the root mapping is 1
	if w.maxDepth > 0 && strings.Count(path, "/")+1 > w.maxDepth {
		return nil, singleIssue(CodeParseError, rootIfEmpty(path), "max depth exceeded")
	}
	id := reflect.ValueOf(src).Pointer()
	if _, cyclic := w.open[id]; cyclic {
		return nil, singleIssue(CodeParseError, rootIfEmpty(path), "mapping contains itself")
	}
	if w.open == nil {
		w.open = make(map[uintptr]struct{})
	}
	w.open[id] = struct{}{}
	return func() { delete(w.open, id) }, nil
}

// isNestedInput reports whether raw goes straight to a nested schema.
func isNestedInput(t Type, raw any) bool {
	if t.kind != KindObject {
		return false
	}
	if _, ok := raw.(*Instance); ok {
		return true
	}
	_, ok := asMapping(raw)
	return ok
}

// firstUnknown returns the smallest undeclared key, for deterministic errors.
func (s *Schema) firstUnknown(src map[string]any) (string, bool) {
	var uks []string
	for k := range src {
		if _, known := s.index[k]; !known {
			uks = append(uks, k)
		}
	}
	if len(uks) == 0 {
		return "", false
	}
	sort.Strings(uks)
	return uks[0], true
}

// ---- engine bridging ----

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

func forwardIssues(sink func(Issue)) func(eng.SimpleIssue) {
	if sink == nil {
		return nil
	}
	return func(si eng.SimpleIssue) {
		sink(Issue{Path: si.Path, Code: si.Code, Message: si.Message})
	}
}

func engineIssues(err error) Issues {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message, Cause: err})
	}
	return AppendIssues(nil, Issue{Code: CodeParseError, Path: "/", Message: err.Error(), Cause: err})
}
