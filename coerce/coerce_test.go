package coerce

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    any
		wantErr bool
	}{
		{name: "numeric string", input: "42", want: int64(42)},
		{name: "padded string", input: " -7 ", want: int64(-7)},
		{name: "exponent string", input: "1e3", want: int64(1000)},
		{name: "json number", input: json.Number("1987"), want: int64(1987)},
		{name: "int", input: 5, want: int64(5)},
		{name: "uint8", input: uint8(9), want: int64(9)},
		{name: "integral float", input: 3.0, want: int64(3)},
		{name: "fractional float", input: 3.5, wantErr: true},
		{name: "text", input: "abc", wantErr: true},
		{name: "bool", input: true, wantErr: true},
		{name: "nil", input: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Int(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFloat(t *testing.T) {
	got, err := Float("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)

	got, err = Float(7)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)

	got, err = Float(json.Number("1e2"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, got)

	_, err = Float(map[string]any{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestString(t *testing.T) {
	for in, want := range map[any]string{
		"x":                "x",
		int64(12):          "12",
		1.5:                "1.5",
		true:               "true",
		json.Number("3.0"): "3.0",
	} {
		got, err := String(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := String([]int{1})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestBool(t *testing.T) {
	got, err := Bool("TRUE")
	require.NoError(t, err)
	assert.Equal(t, true, got)

	_, err = Bool("yes please")
	assert.Error(t, err)
	_, err = Bool(1)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestTimeRFC3339(t *testing.T) {
	got, err := TimeRFC3339("2024-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.True(t, got.(time.Time).Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))

	got, err = TimeRFC3339("2024-03-01T10:00:00.123+09:00")
	require.NoError(t, err)
	assert.Equal(t, 123*time.Millisecond, time.Duration(got.(time.Time).Nanosecond()))

	_, err = TimeRFC3339("2024-03-01")
	assert.Error(t, err)
}

func TestDateLayout(t *testing.T) {
	got, err := DateLayout("20060102")("19870415")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1987, 4, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = DateLayout("20060102")("1987-04-15")
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	c := Chain(TrimSpace, MapString(strings.ToLower), Bool)
	got, err := c("  True ")
	require.NoError(t, err)
	assert.Equal(t, true, got)

	boom := errors.New("boom")
	called := false
	c = Chain(func(any) (any, error) { return nil, boom }, func(v any) (any, error) { called = true; return v, nil })
	_, err = c("x")
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestChain_NilShortCircuits(t *testing.T) {
	called := false
	c := Chain(func(any) (any, error) { return nil, nil }, func(v any) (any, error) { called = true; return v, nil })
	got, err := c("x")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, called)
}

func TestMapString_PassesOtherTypes(t *testing.T) {
	got, err := MapString(strings.ToUpper)(12)
	require.NoError(t, err)
	assert.Equal(t, 12, got)
}
