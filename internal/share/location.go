package share

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultParam is the query parameter that carries the token.
const DefaultParam = "data"

// WithToken returns base with the token set as query parameter param.
// Any previous value of param is replaced; other parameters and the
// fragment are kept. The token is written unescaped, as the web page does.
func WithToken(base, token, param string) (string, error) {
	if param == "" {
		param = DefaultParam
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base address: %w", err)
	}

	q := u.Query()
	q.Del(param)
	raw := q.Encode()
	if raw != "" {
		raw += "&"
	}
	u.RawQuery = raw + url.QueryEscape(param) + "=" + token
	return u.String(), nil
}

// TokenFrom extracts the token carried in address under param.
// It reports false when the address cannot be parsed or the parameter is
// absent or empty.
func TokenFrom(address, param string) (string, bool) {
	if param == "" {
		param = DefaultParam
	}
	u, err := url.Parse(address)
	if err != nil {
		return "", false
	}
	// Query decoding reads a literal '+' as a space; tokens never hold spaces.
	token := strings.ReplaceAll(u.Query().Get(param), " ", "+")
	return token, token != ""
}
