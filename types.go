package godto

// UnknownPolicy controls how keys absent from a schema are handled.
type UnknownPolicy int

const (
	UnknownIgnore UnknownPolicy = iota // Drop unknown keys (forward-compatible parsing).
	UnknownStrict                      // Reject unknown keys with an error.
)

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement applied while tokenizing text input.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
}

// ParseOpt bundles parsing options. Only the last ParseOpt passed to an entry
// point is used.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int   // Maximum nesting depth of the input; 0 disables the check.
	MaxBytes   int64 // Maximum size of text input; 0 disables the check.
	// IssueSink receives non-fatal issues such as duplicate-key warnings.
	IssueSink func(Issue)
}

// SchemaOpt configures a schema at definition time.
type SchemaOpt struct {
	Partial bool          // Tolerate missing fields.
	Unknown UnknownPolicy // Handling of keys the schema does not declare.
}

func lastParseOpt(opts []ParseOpt) ParseOpt {
	if len(opts) == 0 {
		return ParseOpt{}
	}
	return opts[len(opts)-1]
}
