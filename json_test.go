package godto_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/godto"
	g "github.com/reoring/godto/dsl"
)

func TestFromJSON_Numbers(t *testing.T) {
	ctx := context.Background()
	s := g.Object("N").Field("i", g.Int()).Field("f", g.Float()).MustBuild()

	inst, err := godto.FromJSON(ctx, s, []byte(`{"i": 1e3, "f": 2}`))
	require.NoError(t, err)
	i, _ := inst.Int("i")
	f, _ := inst.Float("f")
	assert.Equal(t, int64(1000), i)
	assert.Equal(t, 2.0, f)

	_, err = godto.FromJSON(ctx, s, []byte(`{"i": 1.5, "f": 2}`))
	var ite *godto.InvalidTypeError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "number", ite.Actual)

	_, err = godto.FromJSON(ctx, s, []byte(`{"i": 9223372036854775808, "f": 2}`))
	require.ErrorAs(t, err, &ite)
}

func TestFromJSON_ParseErrors(t *testing.T) {
	ctx := context.Background()
	s := g.Object("A").Field("a", g.Optional(g.Int())).Field("b", g.Optional(g.Int())).MustBuild()
	for name, in := range map[string]string{
		"empty":          ``,
		"truncated":      `{"a": 1`,
		"trailing":       `{"a": 1} {"a": 2}`,
		"missing comma":  `{"a":1 "b":2}`,
		"trailing comma": `{"a":1,}`,
		"missing colon":  `{"a" 1}`,
		"double comma":   `{"a":1,,"b":2}`,
		"leading zero":   `{"a":01}`,
		"array comma":    `{"a":[1,]}`,
		"bare word":      `{"a":nope}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := godto.FromJSON(ctx, s, []byte(in))
			iss, ok := godto.AsIssues(err)
			require.True(t, ok, "%v", err)
			assert.Equal(t, godto.CodeParseError, iss[0].Code)
		})
	}

	_, err := godto.FromJSON(ctx, s, []byte(`[1]`))
	assert.ErrorIs(t, err, godto.ErrInvalidType)
}

func TestFromJSON_DuplicateKeys(t *testing.T) {
	ctx := context.Background()
	s := g.Object("A").Field("a", g.Int()).MustBuild()
	in := []byte(`{"a": 1, "a": 2}`)

	inst, err := godto.FromJSON(ctx, s, in)
	require.NoError(t, err)
	a, _ := inst.Int("a")
	assert.Equal(t, int64(2), a)

	var warned []godto.Issue
	_, err = godto.FromJSON(ctx, s, in, godto.ParseOpt{
		Strictness: godto.Strictness{OnDuplicateKey: godto.Warn},
		IssueSink:  func(is godto.Issue) { warned = append(warned, is) },
	})
	require.NoError(t, err)
	require.Len(t, warned, 1)
	assert.Equal(t, godto.CodeDuplicateKey, warned[0].Code)
	assert.Equal(t, "/a", warned[0].Path)

	_, err = godto.FromJSON(ctx, s, in, godto.ParseOpt{Strictness: godto.Strictness{OnDuplicateKey: godto.Error}})
	iss, ok := godto.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, godto.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "/a", iss[0].Path)
}

func TestFromJSON_Limits(t *testing.T) {
	ctx := context.Background()
	inner := g.Object("In").Field("x", g.Int()).MustBuild()
	s := g.Object("Out").Field("in", g.Nested(inner)).MustBuild()
	in := []byte(`{"in": {"x": 1}}`)

	_, err := godto.FromJSON(ctx, s, in, godto.ParseOpt{MaxDepth: 2})
	require.NoError(t, err)

	_, err = godto.FromJSON(ctx, s, in, godto.ParseOpt{MaxDepth: 1})
	iss, ok := godto.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, godto.CodeParseError, iss[0].Code)
	assert.Equal(t, "/in", iss[0].Path)

	_, err = godto.FromJSON(ctx, s, in, godto.ParseOpt{MaxBytes: 4})
	iss, ok = godto.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, godto.CodeTruncated, iss[0].Code)

	_, err = godto.FromJSONReader(ctx, s, strings.NewReader(string(in)), godto.ParseOpt{MaxBytes: 4})
	iss, ok = godto.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, godto.CodeTruncated, iss[0].Code)

	inst, err := godto.FromJSONReader(ctx, s, strings.NewReader(string(in)), godto.ParseOpt{MaxBytes: int64(len(in))})
	require.NoError(t, err)
	assert.True(t, inst.Has("in"))
}

func TestFromYAML(t *testing.T) {
	ctx := context.Background()
	user, _, _ := userSchemas()
	doc := []byte(`
first_name: dwight
car:
  year: 1987
  license: 4018 JXT
address:
  city: scranton
salary: ~
`)
	inst, err := godto.FromYAML(ctx, user, doc)
	require.NoError(t, err)
	c, _ := inst.Object("car")
	y, _ := c.Int("year")
	assert.Equal(t, int64(1987), y)
	assert.True(t, inst.IsNull("salary"))

	_, err = godto.FromYAML(ctx, user, []byte("first_name: [unclosed"))
	iss, ok := godto.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, godto.CodeParseError, iss[0].Code)
}

func TestFromYAML_Time(t *testing.T) {
	ctx := context.Background()
	s := g.Object("Ev").Field("at", g.Time()).MustBuild()
	inst, err := godto.FromYAML(ctx, s, []byte(`at: "2024-05-01T12:00:00Z"`))
	require.NoError(t, err)
	at, _ := inst.Time("at")
	assert.True(t, at.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
}
