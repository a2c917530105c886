package engine

import (
	"errors"
	"fmt"
)

// ErrStopped is returned for commands submitted after the engine stopped,
// or still queued when it stopped.
var ErrStopped = errors.New("engine stopped")

// CommandErrorCode categorizes command failures.
type CommandErrorCode string

const (
	// ErrCodeCommandFailed indicates the command returned an error.
	ErrCodeCommandFailed CommandErrorCode = "COMMAND_FAILED"

	// ErrCodeCommandPanic indicates the command panicked.
	ErrCodeCommandPanic CommandErrorCode = "COMMAND_PANIC"
)

// CommandError reports a failed command with its position in the stream.
// It unwraps to the command's own error.
type CommandError struct {
	Code    CommandErrorCode
	Seq     int64
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s (seq=%d): %v", e.Code, e.Command, e.Seq, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// IsPanic reports whether err is a CommandError for a panicking command.
// Uses errors.As to handle wrapped errors.
func IsPanic(err error) bool {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeCommandPanic
	}
	return false
}
