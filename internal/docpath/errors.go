package docpath

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes path failures.
type ErrorCode string

const (
	// ErrCodeMalformedPath indicates the expression does not match the grammar.
	ErrCodeMalformedPath ErrorCode = "MALFORMED_PATH"

	// ErrCodePathNotFound indicates a missing key, or a field step applied to
	// something other than an object.
	ErrCodePathNotFound ErrorCode = "PATH_NOT_FOUND"

	// ErrCodeNotAnArray indicates an index step or array operation applied to
	// something other than an array.
	ErrCodeNotAnArray ErrorCode = "NOT_AN_ARRAY"

	// ErrCodeIndexOutOfRange indicates an index at or beyond the array length.
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"
)

var (
	errEmptyIndex = errors.New("empty index")
	errNotInteger = errors.New("not a non-negative integer")
)

// Error is returned by Parse, Resolve and the docstore operations.
// All codes are caller-correctable: the operation is aborted and the
// input document is left as it was.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Path is the expression being parsed or resolved.
	Path string

	// Step is the zero-based index of the failing step, or -1 when the
	// failure is not tied to one step (malformed expressions).
	Step int

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Step >= 0 {
		return fmt.Sprintf("%s: %s (path=%s, step=%d)", e.Code, e.Message, e.Path, e.Step)
	}
	return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
}

func newMalformed(expr, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeMalformedPath,
		Path:    expr,
		Step:    -1,
		Message: fmt.Sprintf(format, args...),
	}
}

func newStepError(code ErrorCode, p Path, step int, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Path:    p.String(),
		Step:    step,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewIndexOutOfRange reports an array index outside [0, length).
func NewIndexOutOfRange(p Path, index, length int) *Error {
	return newStepError(ErrCodeIndexOutOfRange, p, len(p)-1,
		"index %d out of range for array of length %d", index, length)
}

// NewNotAnArray reports that the value at p is not an array.
func NewNotAnArray(p Path, kind fmt.Stringer) *Error {
	return newStepError(ErrCodeNotAnArray, p, len(p)-1, "value is %s, not an array", kind)
}

// CodeOf returns the ErrorCode of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsMalformed reports whether err is a MALFORMED_PATH error.
func IsMalformed(err error) bool { return CodeOf(err) == ErrCodeMalformedPath }

// IsNotFound reports whether err is a PATH_NOT_FOUND error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodePathNotFound }

// IsNotAnArray reports whether err is a NOT_AN_ARRAY error.
func IsNotAnArray(err error) bool { return CodeOf(err) == ErrCodeNotAnArray }

// IsOutOfRange reports whether err is an INDEX_OUT_OF_RANGE error.
func IsOutOfRange(err error) bool { return CodeOf(err) == ErrCodeIndexOutOfRange }
