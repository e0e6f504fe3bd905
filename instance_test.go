package godto_test

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/godto"
	"github.com/reoring/godto/coerce"
	g "github.com/reoring/godto/dsl"
	"github.com/reoring/godto/validate"
)

func accountSchema() *godto.Schema {
	return g.Object("Account").
		Field("id", g.Int()).
		Field("email", g.String().Mutable().Coerce(coerce.TrimSpace).Validate(validate.Pattern(`^[^@\s]+@[^@\s]+$`))).
		Field("balance", g.Optional(g.Float()).Mutable()).
		Field("nick", g.Optional(g.String())).
		MustBuild()
}

func newAccount(t *testing.T) *godto.Instance {
	t.Helper()
	inst, err := accountSchema().Parse(context.Background(), map[string]any{"id": 1, "email": "a@b.c"})
	require.NoError(t, err)
	return inst
}

func TestSet_ImmutableField(t *testing.T) {
	inst := newAccount(t)
	err := inst.Set("id", 2)
	var ie *godto.ImmutabilityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "id", ie.Field)
	assert.ErrorIs(t, err, godto.ErrImmutable)
	id, _ := inst.Int("id")
	assert.Equal(t, int64(1), id)

	// absent optional immutable fields are frozen as well
	require.ErrorAs(t, inst.Set("nick", "x"), &ie)
	assert.True(t, inst.IsNull("nick"))

	iss, ok := godto.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, godto.CodeImmutable, iss[0].Code)
	assert.Equal(t, "/id", iss[0].Path)
}

func TestSet_MutableFieldRevalidates(t *testing.T) {
	inst := newAccount(t)

	require.NoError(t, inst.Set("email", "  new@b.c "))
	email, _ := inst.String("email")
	assert.Equal(t, "new@b.c", email)

	err := inst.Set("email", "not-an-email")
	var ve *godto.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)
	email, _ = inst.String("email")
	assert.Equal(t, "new@b.c", email)

	err = inst.Set("email", 42)
	var ite *godto.InvalidTypeError
	require.ErrorAs(t, err, &ite)
	email, _ = inst.String("email")
	assert.Equal(t, "new@b.c", email)

	err = inst.Set("email", nil)
	require.ErrorAs(t, err, &ite)
}

func TestSet_OptionalMutable(t *testing.T) {
	inst := newAccount(t)
	assert.True(t, inst.IsNull("balance"))
	require.NoError(t, inst.Set("balance", 10))
	b, ok := inst.Float("balance")
	require.True(t, ok)
	assert.Equal(t, 10.0, b)
	require.NoError(t, inst.Set("balance", nil))
	assert.True(t, inst.IsNull("balance"))
}

func TestSet_UnknownField(t *testing.T) {
	inst := newAccount(t)
	err := inst.Set("nope", 1)
	var ue *godto.UnknownFieldError
	require.ErrorAs(t, err, &ue)
	assert.ErrorIs(t, err, godto.ErrUnknownField)
}

func TestSet_PartialInstanceMutableFieldCanBeFilled(t *testing.T) {
	s := g.Object("Draft").Field("title", g.String().Mutable()).Field("id", g.Int()).Partial().MustBuild()
	inst, err := s.Parse(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.False(t, inst.Has("title"))
	require.NoError(t, inst.Set("title", "hello"))
	assert.True(t, inst.Has("title"))

	var ie *godto.ImmutabilityError
	require.ErrorAs(t, inst.Set("id", 1), &ie)
	assert.False(t, inst.Has("id"))
}

func TestSet_NestedMapping(t *testing.T) {
	ctx := context.Background()
	car := g.Object("Car").Field("year", g.Int().Validate(validate.Gt[int64](1980))).MustBuild()
	owner := g.Object("Owner").Field("car", g.Nested(car).Mutable()).MustBuild()
	inst, err := owner.Parse(ctx, map[string]any{"car": map[string]any{"year": 1990}})
	require.NoError(t, err)

	require.NoError(t, inst.Set("car", map[string]any{"year": 2000}))
	c, _ := inst.Object("car")
	y, _ := c.Int("year")
	assert.Equal(t, int64(2000), y)

	err = inst.SetContext(ctx, "car", map[string]any{"year": 1970})
	var ve *godto.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "/car/year", ve.Path)

	// nested instances are frozen like any other
	var ie *godto.ImmutabilityError
	require.ErrorAs(t, c.Set("year", 2001), &ie)
}

func TestValue_Accessors(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := g.Object("All").
		Field("s", g.String()).
		Field("i", g.Int()).
		Field("f", g.Float()).
		Field("b", g.Bool()).
		Field("t", g.Time()).
		Field("l", g.List(g.String())).
		Field("n", g.Optional(g.Int())).
		MustBuild()
	inst, err := s.Parse(ctx, map[string]any{"s": "x", "i": 1, "f": 2, "b": true, "t": "2024-05-01T12:00:00Z", "l": []string{"a"}})
	require.NoError(t, err)

	sv, _ := inst.String("s")
	iv, _ := inst.Int("i")
	fv, _ := inst.Float("f")
	bv, _ := inst.Bool("b")
	tv, _ := inst.Time("t")
	lv, _ := inst.List("l")
	assert.Equal(t, "x", sv)
	assert.Equal(t, int64(1), iv)
	assert.Equal(t, 2.0, fv)
	assert.True(t, bv)
	assert.True(t, tv.Equal(at))
	assert.Equal(t, []any{"a"}, lv)

	_, ok := inst.Int("n")
	assert.False(t, ok)
	_, ok = godto.Value[string](inst, "i")
	assert.False(t, ok)
	_, ok = godto.Value[string](inst, "missing")
	assert.False(t, ok)
	_, ok = godto.Value[string](nil, "s")
	assert.False(t, ok)
}

func TestInstance_EqualAndToMap(t *testing.T) {
	a := newAccount(t)
	b := newAccount(t)
	assert.True(t, a.Equal(b))
	require.NoError(t, b.Set("email", "x@y.z"))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))

	other, err := g.Object("Account").Field("id", g.Int()).MustBuild().Parse(context.Background(), map[string]any{"id": 1})
	require.NoError(t, err)
	assert.False(t, a.Equal(other), "same name, different schema")

	assert.Equal(t, map[string]any{"id": int64(1), "email": "a@b.c", "balance": nil, "nick": nil}, a.ToMap())
}

func TestInstance_MarshalJSON(t *testing.T) {
	ctx := context.Background()
	user, _, _ := userSchemas()
	inst, err := godto.FromJSON(ctx, user, []byte(`{"first_name":"dwight","car":{"year":1987,"license":"4018 JXT"},"address":{"city":"scranton"},"salary":null}`))
	require.NoError(t, err)

	b, err := json.Marshal(inst)
	require.NoError(t, err)
	assert.JSONEq(t, `{"first_name":"dwight","car":{"year":1987,"license":"4018 JXT"},"address":{"city":"scranton"},"salary":null}`, string(b))

	again, err := godto.FromJSON(ctx, user, b)
	require.NoError(t, err)
	assert.True(t, again.Equal(inst))
}

func TestInstance_Describe(t *testing.T) {
	ctx := context.Background()
	user, _, _ := userSchemas()
	inst, err := godto.FromMap(ctx, user, map[string]any{
		"first_name": "dwight",
		"car":        map[string]any{"year": 1987, "license": "4018 JXT"},
		"address":    map[string]any{"city": "scranton"},
	})
	require.NoError(t, err)
	want := `User{first_name: "dwight", car: Car{year: 1987, license: "4018 JXT"}, address: Address{city: "scranton"}, salary: null}`
	assert.Equal(t, want, inst.Describe())
	assert.Equal(t, want, inst.GoString())
}

func TestInstance_ListAccessorsReturnCopies(t *testing.T) {
	ctx := context.Background()
	item := g.Object("Item").Field("sku", g.String()).MustBuild()
	s := g.Object("Cart").
		Field("tags", g.List(g.String())).
		Field("items", g.List(g.Nested(item))).
		MustBuild()
	inst, err := s.Parse(ctx, map[string]any{
		"tags":  []any{"a", "b"},
		"items": []any{map[string]any{"sku": "x"}},
	})
	require.NoError(t, err)

	var ie *godto.ImmutabilityError
	require.ErrorAs(t, inst.Set("tags", []any{"c"}), &ie)

	xs, ok := inst.List("tags")
	require.True(t, ok)
	xs[0] = 42
	raw, _ := inst.Get("tags")
	raw.([]any)[1] = nil
	got, _ := inst.List("tags")
	assert.Equal(t, []any{"a", "b"}, got)
	assert.Equal(t, `Cart{tags: ["a", "b"], items: [Item{sku: "x"}]}`, inst.Describe())

	_, err = s.Parse(ctx, inst.ToMap())
	require.NoError(t, err)

	// nested instances inside a list keep their own guard
	items, _ := inst.List("items")
	require.ErrorAs(t, items[0].(*godto.Instance).Set("sku", "y"), &ie)
}
