package share

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plandeck/internal/doc"
)

func sampleDocuments() map[string]doc.Value {
	return map[string]doc.Value{
		"offer": doc.Object{
			"hero": doc.Object{
				"title":    doc.String("הצעת מחיר לשיווק בווידאו"),
				"subtitle": doc.String("חבילות תוכן לעסקים"),
			},
			"plans": doc.Array{
				doc.Object{
					"id":          doc.Number(1),
					"name":        doc.String("בסיסי"),
					"englishName": doc.String("Basic"),
					"price":       doc.String("₪2,500"),
					"features":    doc.Strings("3 סרטונים", "עריכה"),
					"isAddon":     doc.Bool(false),
					"videos": doc.Array{
						doc.Object{"title": doc.String("Reel"), "url": doc.Null{}},
					},
				},
			},
			"terms": doc.Strings("תשלום מראש", "50% advance"),
		},
		"scalars": doc.Array{
			doc.Null{}, doc.Bool(true), doc.Number(0), doc.Number(-1.5),
			doc.Number(1e21), doc.Number(1e-7), doc.Number(math.MaxInt32),
			doc.String(""), doc.String("quote \" backslash \\ tab \t"),
		},
		"separators": doc.Object{"s": doc.String("line\u2028para\u2029end")},
		"emoji":      doc.Object{"s": doc.String("\U0001F3AC\U0001F4F7")},
		"empty":      doc.Object{},
		"bare":       doc.String("plain"),
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for name, d := range sampleDocuments() {
		t.Run(name, func(t *testing.T) {
			token, err := Encode(d)
			require.NoError(t, err)

			got, err := Decode(token)
			require.NoError(t, err)
			if diff := cmp.Diff(d, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	d := sampleDocuments()["offer"]

	first, err := Encode(d)
	require.NoError(t, err)
	second, err := Encode(doc.Clone(d))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncodeRejectsInvalidDocument(t *testing.T) {
	_, err := Encode(doc.Object{"n": doc.Number(math.NaN())})
	require.Error(t, err)

	// Invalid UTF-8 would decode as U+FFFD and break the round trip.
	_, err = Encode(doc.Object{"title": doc.String("a\xffb")})
	require.ErrorIs(t, err, doc.ErrInvalidUTF8)

	_, err = Encode(doc.Object{"subtitle": nil})
	require.ErrorIs(t, err, doc.ErrNilValue)
}

func TestDecodeReadsSpacesAsPlus(t *testing.T) {
	// Search a few documents for a token containing '+'.
	for i := 0; i < 200; i++ {
		d := doc.Object{"n": doc.Number(float64(i)), "s": doc.String(strings.Repeat("א", i%17))}
		token, err := Encode(d)
		require.NoError(t, err)
		if !strings.Contains(token, "+") {
			continue
		}

		got, err := Decode(strings.ReplaceAll(token, "+", " "))
		require.NoError(t, err)
		assert.True(t, doc.Equal(d, got))
		return
	}
	t.Skip("no token with '+' found")
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty token", "", ErrEmpty},
		{"empty stream", "Q", ErrEmpty},
		{"truncated", "IYI1", ErrCorrupt},
		{"invalid symbol", "not a token!", ErrCorrupt},
		{"not json", "IYI1Q", ErrCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.token)
			assert.Nil(t, got)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsDecodeError(err))

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.token, de.Token)
		})
	}
}

func TestDecodeTruncatedRealToken(t *testing.T) {
	token, err := Encode(sampleDocuments()["offer"])
	require.NoError(t, err)

	_, err = Decode(token[:len(token)/2])
	assert.ErrorIs(t, err, ErrCorrupt)
}
