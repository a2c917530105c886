package templates

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound is returned for an id the registry does not hold.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrBuiltinTemplate is returned when deleting a built-in template.
	ErrBuiltinTemplate = errors.New("built-in templates cannot be deleted")

	// ErrEmptyName is returned when saving a template with a blank name.
	ErrEmptyName = errors.New("template name is empty")
)

// PersistError reports that the user-defined set could not be written to
// storage. The in-memory registry already reflects the change; only
// durability is lost.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist templates to %q: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// IsPersistError reports whether err is or wraps a *PersistError.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}
