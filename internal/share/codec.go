// Package share converts documents to and from share tokens.
//
// A token is the canonical JSON form of a document, compressed with an
// LZW variant over UTF-16 code units and written in a 64-symbol URL-safe
// alphabet. The bitstream matches lz-string's compressToEncodedURIComponent,
// so links produced by the web page decode here and the reverse.
//
// Encode and Decode are pure and safe for concurrent use.
package share

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/roach88/plandeck/internal/doc"
)

var (
	// ErrEmpty is returned for an empty token, or one that decodes to no text.
	ErrEmpty = errors.New("empty share token")

	// ErrCorrupt is returned when the token is not a valid compressed stream.
	ErrCorrupt = errors.New("corrupt share token")
)

// DecodeError reports a token that could not be turned back into a document.
type DecodeError struct {
	Token string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode share token %q: %v", abbreviate(e.Token), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is or wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Encode serializes d to a share token.
// The same document always yields the same token. Documents failing
// doc.Validate are rejected, so every token decodes back to its document.
func Encode(d doc.Value) (string, error) {
	if err := doc.Validate(d); err != nil {
		return "", fmt.Errorf("encode share token: %w", err)
	}
	text, err := doc.MarshalCanonical(d)
	if err != nil {
		return "", fmt.Errorf("encode share token: %w", err)
	}
	return compressUnits(utf16.Encode([]rune(string(text)))), nil
}

// Decode parses a share token back into a document.
//
// Spaces are read as '+', since query-string decoding turns the raw '+'
// symbol into a space. All failures are *DecodeError.
func Decode(token string) (doc.Value, error) {
	if token == "" {
		return nil, &DecodeError{Token: token, Err: ErrEmpty}
	}
	normalized := strings.ReplaceAll(token, " ", "+")

	units, err := decompressUnits(normalized)
	if err != nil {
		return nil, &DecodeError{Token: token, Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}
	if len(units) == 0 {
		return nil, &DecodeError{Token: token, Err: ErrEmpty}
	}

	v, err := doc.Parse([]byte(string(utf16.Decode(units))))
	if err != nil {
		return nil, &DecodeError{Token: token, Err: fmt.Errorf("%w: %w", ErrCorrupt, err)}
	}
	return v, nil
}

func abbreviate(s string) string {
	const limit = 32
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
