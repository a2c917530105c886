package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"null", Null{}, `null`},
		{"bools", Array{Bool(true), Bool(false)}, `[true,false]`},
		{"integer", Number(3500), `3500`},
		{"negative", Number(-12), `-12`},
		{"fraction", Number(0.25), `0.25`},
		{"zero", Number(0), `0`},
		{"large integer", Number(1e20), `100000000000000000000`},
		{"tiny", Number(1e-7), `1e-07`},
		{"empty object", Object{}, `{}`},
		{"empty array", Array{}, `[]`},
		{"sorted keys", Object{"b": Number(1), "a": Number(2), "B": Number(3)}, `{"B":3,"a":2,"b":1}`},
		{"no html escape", String("<b>&</b>"), `"<b>&</b>"`},
		{"hebrew", String("פריט חדש"), `"פריט חדש"`},
		{"quotes and newline", String("a\"b\nc"), `"a\"b\nc"`},
		{"nested", Object{"plans": Array{Object{"id": Number(1), "features": Strings("x")}}}, `{"plans":[{"features":["x"],"id":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	ls := string(rune(0x2028))
	ps := string(rune(0x2029))

	got, err := MarshalCanonical(String("a" + ls + "b" + ps))
	require.NoError(t, err)
	assert.Equal(t, `"a`+ls+`b`+ps+`"`, string(got))

	// An escaped backslash followed by the text u2028 stays escaped.
	got, err = MarshalCanonical(String(`\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(got))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	_, err := MarshalCanonical(nil)
	require.ErrorIs(t, err, ErrNilValue)

	_, err = MarshalCanonical(Object{"x": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x"`)
}

func TestMarshalCanonicalDoesNotNormalize(t *testing.T) {
	// "é" as e + combining acute (NFD) must survive unchanged.
	nfd := "e\u0301"
	got, err := MarshalCanonical(String(nfd))
	require.NoError(t, err)

	back, err := Parse(got)
	require.NoError(t, err)
	assert.Equal(t, String(nfd), back)
}

func TestCanonicalParseRoundTrip(t *testing.T) {
	in := Object{
		"hero": Object{"title": String("הצעת מחיר"), "subtitle": String("Video <Production> & more")},
		"plans": Array{
			Object{
				"id":       Number(1),
				"name":     String("בסיסי"),
				"price":    String("₪2,500"),
				"features": Strings("צילום", "עריכה"),
				"isAddon":  Bool(false),
				"ratio":    Number(1.75),
				"extra":    Null{},
			},
		},
		"terms": Strings("תנאי א", "תנאי ב"),
	}

	data, err := MarshalCanonical(in)
	require.NoError(t, err)

	out, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, Equal(in, out))

	again, err := MarshalCanonical(out)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again), "canonical output must be stable")
}
