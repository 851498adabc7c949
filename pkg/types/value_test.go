package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind ValueKind
		wantText string
	}{
		{"string", `"Betty"`, KindString, "Betty"},
		{"integer", `42`, KindInt, "42"},
		{"negative integer", `-7`, KindInt, "-7"},
		{"float", `37.77`, KindFloat, "37.77"},
		{"integral float keeps decimal point", `3.0`, KindFloat, "3.0"},
		{"exponent is float", `1e3`, KindFloat, "1000.0"},
		{"list is raw", `["a", "b"]`, KindRaw, `["a","b"]`},
		{"bool is raw", `true`, KindRaw, `true`},
		{"null is raw", `null`, KindRaw, `null`},
		{"oversized integer is raw", `12345678901234567890`, KindRaw, "12345678901234567890"},
		{"oversized negative integer is raw", `-12345678901234567890`, KindRaw, "-12345678901234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.wantKind, v.Kind())
			assert.Equal(t, tt.wantText, v.String())
		})
	}
}

func TestValueMarshalJSONPreservesKind(t *testing.T) {
	values := []Value{
		StringValue("hello world"),
		StringValue(""),
		IntValue(0),
		IntValue(-12),
		FloatValue(0),
		FloatValue(-122.431297),
		FloatValue(1e25),
	}

	for _, v := range values {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		var back Value
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, v.Equal(back), "%s: got %s (%s)", data, back, back.Kind())
	}
}

func TestValueMarshalJSONRejectsNaN(t *testing.T) {
	nan := FloatValue(0)
	nan.f = nan.f / nan.f
	_, err := json.Marshal(nan)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestZeroValueIsEmptyString(t *testing.T) {
	var v Value
	s, ok := v.Str()
	assert.True(t, ok)
	assert.Equal(t, "", s)
	assert.True(t, v.Equal(StringValue("")))
}

func TestParseNumber(t *testing.T) {
	v, err := ParseNumber("12")
	require.NoError(t, err)
	i, ok := v.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(12), i)

	v, err = ParseNumber("1.5")
	require.NoError(t, err)
	f, ok := v.Float()
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	_, err = ParseNumber("twelve")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestOversizedIntegerRoundTrip(t *testing.T) {
	const lit = "12345678901234567890"
	var v Value
	require.NoError(t, json.Unmarshal([]byte(lit), &v))

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, lit, string(data))

	big, err := ParseNumber("9223372036854775808")
	require.NoError(t, err)
	assert.Equal(t, KindRaw, big.Kind())

	largest, err := ParseNumber("9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, KindInt, largest.Kind())
}
