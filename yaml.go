package godto

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML decodes the first YAML document in data and parses it into an
// Instance of s. YAML scalars keep the types yaml.v3 resolves them to.
func FromYAML(ctx context.Context, s *Schema, data []byte, opts ...ParseOpt) (*Instance, error) {
	if s == nil {
		return nil, singleIssue(CodeSchema, "/", "nil schema")
	}
	opt := lastParseOpt(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, singleIssue(CodeTruncated, "/", "max bytes exceeded")
	}
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, AppendIssues(nil, Issue{Code: CodeParseError, Path: "/", Message: err.Error(), Cause: err})
	}
	return s.Parse(withWalk(ctx, opt.MaxDepth), yamlNormalizeValue(node))
}

// yamlNormalizeValue converts YAML-decoded values (which may contain map[any]any)
// into JSON-like values recursively.
func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = yamlNormalizeValue(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
