package validate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/godto"
	"github.com/reoring/godto/validate"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		p    func(int64) bool
		in   int64
		want bool
	}{
		{"gt above", validate.Gt[int64](1980), 1987, true},
		{"gt equal", validate.Gt[int64](1980), 1980, false},
		{"lt below", validate.Lt[int64](10), 9, true},
		{"min equal", validate.Min[int64](3), 3, true},
		{"max above", validate.Max[int64](3), 4, false},
		{"between low edge", validate.Between[int64](1, 5), 1, true},
		{"between outside", validate.Between[int64](1, 5), 6, false},
		{"eq", validate.Compare(validate.OpEq, int64(2)), 2, true},
		{"ne", validate.Compare(validate.OpNe, int64(2)), 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p(tt.in))
		})
	}
}

func TestStrings(t *testing.T) {
	assert.True(t, validate.NonEmpty("x"))
	assert.False(t, validate.NonEmpty("  "))
	assert.True(t, validate.MinLen(2)("日本"))
	assert.False(t, validate.MaxLen(1)("日本"))
	assert.True(t, validate.Pattern(`^\d{4} [A-Z]{3}$`)("4018 JXT"))
	assert.False(t, validate.Pattern(`^\d{4} [A-Z]{3}$`)("4018 jxt"))
	assert.True(t, validate.OneOf("a", "b")("b"))
	assert.False(t, validate.OneOf("a", "b")("c"))
	assert.Panics(t, func() { validate.Pattern("(") })
}

func TestCombinators(t *testing.T) {
	p := validate.All(validate.Gt(0.0), validate.Lt(1.0))
	assert.True(t, p(0.5))
	assert.False(t, p(1.5))

	q := validate.Any(validate.Lt(0.0), validate.Gt(1.0))
	assert.True(t, q(2))
	assert.False(t, q(0.5))

	assert.True(t, validate.Not(validate.NonEmpty)(""))
	assert.True(t, validate.All[int]()(1))
	assert.False(t, validate.Any[int]()(1))
}

func TestUntyped(t *testing.T) {
	u := validate.Untyped(validate.Gt[int64](0))
	assert.True(t, u(int64(1)))
	assert.False(t, u(int64(0)))
	assert.False(t, u("1"))
	assert.False(t, u(nil))
}

func TestCollections(t *testing.T) {
	assert.True(t, validate.MinItems(1)([]any{1}))
	assert.False(t, validate.MinItems(1)([]any{}))
	assert.False(t, validate.MaxItems(1)([]any{1, 2}))
	assert.True(t, validate.Each(validate.NonEmpty)([]any{"a", "b"}))
	assert.False(t, validate.Each(validate.NonEmpty)([]any{"a", 1}))
}

func TestUniqueBy(t *testing.T) {
	item := godto.MustSchema("Item", []godto.Field{{Name: "sku", Type: godto.String()}})
	parse := func(sku string) *godto.Instance {
		inst, err := item.Parse(context.Background(), map[string]any{"sku": sku})
		require.NoError(t, err)
		return inst
	}
	uniq := validate.UniqueBy("sku")
	assert.True(t, uniq([]any{parse("a"), parse("b")}))
	assert.False(t, uniq([]any{parse("a"), parse("a")}))
}
