package godto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/godto/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeSchema       = "schema"
	CodeRequired     = "required"
	CodeInvalidType  = "invalid_type"
	CodeValidation   = "validation"
	CodeImmutable    = "immutable"
	CodeUnknownKey   = "unknown_key"
	CodeDuplicateKey = "duplicate_key"
	CodeParseError   = "parse_error"
	CodeTruncated    = "truncated"
)

// Sentinels matched with errors.Is. Every typed error unwraps to one of them.
var (
	ErrSchema       = errors.New("godto: malformed schema")
	ErrMissingField = errors.New("godto: missing field")
	ErrInvalidType  = errors.New("godto: invalid type")
	ErrValidation   = errors.New("godto: validation failed")
	ErrImmutable    = errors.New("godto: immutable field")
	ErrUnknownField = errors.New("godto: unknown field")
)

// SchemaError reports a malformed declaration. It is raised at definition
// time, before any instance exists.
type SchemaError struct {
	Schema string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("godto: schema %s: %s", e.Schema, e.Reason)
	}
	return fmt.Sprintf("godto: schema %s: field %q: %s", e.Schema, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// MissingFieldError reports a required field absent from the input.
type MissingFieldError struct {
	Schema string
	Field  string
	Path   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("godto: %s: missing required field %q", e.Schema, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// InvalidTypeError reports a value whose type, after coercion, does not match
// the declaration. Cause carries the coercion failure when there was one.
type InvalidTypeError struct {
	Schema   string
	Field    string
	Path     string
	Expected string
	Actual   string
	Value    any
	Cause    error
}

func (e *InvalidTypeError) Error() string {
	msg := fmt.Sprintf("godto: %s: field %q: expected %s, got %s", e.Schema, e.Field, e.Expected, e.Actual)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *InvalidTypeError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidType, e.Cause}
	}
	return []error{ErrInvalidType}
}

// ValidationError reports a coerced value rejected by the field validator.
type ValidationError struct {
	Schema string
	Field  string
	Path   string
	Value  any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("godto: %s: field %q: value %v rejected by validator", e.Schema, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ImmutabilityError reports a write to a frozen field.
type ImmutabilityError struct {
	Schema string
	Field  string
}

func (e *ImmutabilityError) Error() string {
	return fmt.Sprintf("godto: %s: field %q is immutable", e.Schema, e.Field)
}

func (e *ImmutabilityError) Unwrap() error { return ErrImmutable }

// UnknownFieldError reports a key the schema does not declare, either in the
// input of a strict schema or as the target of a write.
type UnknownFieldError struct {
	Schema string
	Field  string
	Path   string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("godto: %s: unknown field %q", e.Schema, e.Field)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

// Issue represents a single reported problem.
type Issue struct {
	Path    string // JSON Pointer (for example: /car/year).
	Code    string // One of the codes listed above.
	Field   string // Declared field name, when the issue concerns one.
	Message string
	Cause   error // Typed error (*MissingFieldError, ...) or underlying failure.
	// Params carries structured parameters (e.g., {"expected":"int","got":"string"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of issues that implements error. Parsing is
// fail-fast, so a parse failure carries exactly one Issue; warnings collected
// through ParseOpt.IssueSink are reported separately.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /car/year: invalid type
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			b.WriteString(": " + it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.As can reach the typed errors.
func (iss Issues) Unwrap() []error {
	out := make([]error, 0, len(iss))
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssueOf converts a typed error into its Issue representation.
func IssueOf(err error) Issue {
	var (
		se  *SchemaError
		mfe *MissingFieldError
		ite *InvalidTypeError
		ve  *ValidationError
		ie  *ImmutabilityError
		ue  *UnknownFieldError
	)
	switch {
	case errors.As(err, &mfe):
		return Issue{Path: mfe.Path, Code: CodeRequired, Field: mfe.Field, Cause: err,
			Message: i18n.T(CodeRequired, map[string]string{"field": mfe.Field})}
	case errors.As(err, &ite):
		return Issue{Path: ite.Path, Code: CodeInvalidType, Field: ite.Field, Cause: err,
			Message: i18n.T(CodeInvalidType, map[string]string{"expected": ite.Expected, "got": ite.Actual}),
			Params:  map[string]any{"expected": ite.Expected, "got": ite.Actual}}
	case errors.As(err, &ve):
		return Issue{Path: ve.Path, Code: CodeValidation, Field: ve.Field, Cause: err,
			Message: i18n.T(CodeValidation, map[string]string{"field": ve.Field}),
			Params:  map[string]any{"value": ve.Value}}
	case errors.As(err, &ie):
		return Issue{Path: pointerFor("", ie.Field), Code: CodeImmutable, Field: ie.Field, Cause: err,
			Message: i18n.T(CodeImmutable, map[string]string{"field": ie.Field})}
	case errors.As(err, &ue):
		return Issue{Path: ue.Path, Code: CodeUnknownKey, Field: ue.Field, Cause: err,
			Message: i18n.T(CodeUnknownKey, map[string]string{"field": ue.Field})}
	case errors.As(err, &se):
		return Issue{Path: "/", Code: CodeSchema, Field: se.Field, Cause: err,
			Message: i18n.T(CodeSchema, map[string]string{"reason": se.Reason})}
	default:
		return Issue{Path: "/", Code: CodeParseError, Cause: err, Message: err.Error()}
	}
}

// toIssues wraps an error in Issues unless it already is one.
func toIssues(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsIssues(err); ok {
		return err
	}
	return Issues{IssueOf(err)}
}

func singleIssue(code, path, msg string) Issues {
	return AppendIssues(nil, Issue{Code: code, Path: path, Message: msg})
}
