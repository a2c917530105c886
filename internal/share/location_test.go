package share

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithToken(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		param string
		want  string
	}{
		{"bare", "http://localhost:5173/", "", "http://localhost:5173/?data=ab+c$"},
		{"replaces previous", "https://x.example/?data=old", "", "https://x.example/?data=ab+c$"},
		{"keeps other params", "https://x.example/p?lang=he&data=old", "", "https://x.example/p?lang=he&data=ab+c$"},
		{"keeps fragment", "https://x.example/#plans", "", "https://x.example/?data=ab+c$#plans"},
		{"custom param", "https://x.example/", "offer", "https://x.example/?offer=ab+c$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WithToken(tt.base, "ab+c$", tt.param)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithToken_BadBase(t *testing.T) {
	_, err := WithToken("http://[::1", "abc", "")
	require.Error(t, err)
}

func TestTokenFrom(t *testing.T) {
	token, ok := TokenFrom("https://x.example/?lang=he&data=ab+c$#plans", "")
	require.True(t, ok)
	assert.Equal(t, "ab+c$", token)

	token, ok = TokenFrom("https://x.example/?offer=N4Ig", "offer")
	require.True(t, ok)
	assert.Equal(t, "N4Ig", token)

	for _, address := range []string{"https://x.example/", "https://x.example/?data=", "http://[::1"} {
		_, ok := TokenFrom(address, "")
		assert.False(t, ok, address)
	}
}

func TestTokenFrom_RoundTripsWithToken(t *testing.T) {
	for name, d := range sampleDocuments() {
		token, err := Encode(d)
		require.NoError(t, err, name)

		address, err := WithToken("https://x.example/?lang=he", token, "")
		require.NoError(t, err, name)

		got, ok := TokenFrom(address, "")
		require.True(t, ok, name)
		assert.Equal(t, token, got, name)
	}
}
