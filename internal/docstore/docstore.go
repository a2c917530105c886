// Package docstore implements the document mutation operations.
//
// Every operation is a pure function from one snapshot to the next: the
// input document is never modified. On success a brand-new snapshot is
// returned; on failure the input snapshot itself is returned together with
// a *docpath.Error, or ErrInvalidValue for a value that may not enter a
// document, so a caller that always keeps the returned value still holds
// the prior state. No partial write is ever observable.
package docstore

import (
	"errors"
	"fmt"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/docpath"
)

// ErrInvalidValue is returned when the value to store breaks the document
// invariants (nil, non-finite number, invalid UTF-8). The cause is wrapped.
var ErrInvalidValue = errors.New("invalid value")

// Get returns the value addressed by p.
// The returned value is a deep copy; mutating it does not affect d.
func Get(d doc.Value, p docpath.Path) (doc.Value, error) {
	v, err := docpath.Lookup(d, p)
	if err != nil {
		return nil, err
	}
	return doc.Clone(v), nil
}

// Set replaces the value at p. The location must already exist.
func Set(d doc.Value, p docpath.Path, v doc.Value) (doc.Value, error) {
	if err := checkValue(v); err != nil {
		return d, err
	}
	return write(d, p, docpath.ModeWrite, func(loc docpath.Location) (doc.Value, error) {
		return v, nil
	})
}

// Put is Set, except that a missing final object key is created.
// Intermediate containers must exist.
func Put(d doc.Value, p docpath.Path, v doc.Value) (doc.Value, error) {
	if err := checkValue(v); err != nil {
		return d, err
	}
	return write(d, p, docpath.ModeInsert, func(loc docpath.Location) (doc.Value, error) {
		return v, nil
	})
}

// InsertItem appends v to the array at p.
// Returns NOT_AN_ARRAY if the addressed value is not an array.
func InsertItem(d doc.Value, p docpath.Path, v doc.Value) (doc.Value, error) {
	if err := checkValue(v); err != nil {
		return d, err
	}
	return write(d, p, docpath.ModeWrite, func(loc docpath.Location) (doc.Value, error) {
		arr, ok := loc.Value.(doc.Array)
		if !ok {
			return nil, docpath.NewNotAnArray(p, doc.KindOf(loc.Value))
		}
		out := make(doc.Array, len(arr), len(arr)+1)
		copy(out, arr)
		return append(out, v), nil
	})
}

// RemoveItem deletes the element at index from the array at p, preserving
// the order of the remaining elements.
// Returns NOT_AN_ARRAY or INDEX_OUT_OF_RANGE on failure.
func RemoveItem(d doc.Value, p docpath.Path, index int) (doc.Value, error) {
	return write(d, p, docpath.ModeWrite, func(loc docpath.Location) (doc.Value, error) {
		arr, ok := loc.Value.(doc.Array)
		if !ok {
			return nil, docpath.NewNotAnArray(p, doc.KindOf(loc.Value))
		}
		if index < 0 || index >= len(arr) {
			return nil, docpath.NewIndexOutOfRange(p, index, len(arr))
		}
		out := make(doc.Array, 0, len(arr)-1)
		out = append(out, arr[:index]...)
		return append(out, arr[index+1:]...), nil
	})
}

// write resolves p against a private copy of d and stores the value built
// by fn at the resolved location. d is returned unchanged on any error.
func write(d doc.Value, p docpath.Path, mode docpath.Mode, fn func(docpath.Location) (doc.Value, error)) (doc.Value, error) {
	// Validate against the input before cloning.
	if _, err := docpath.Resolve(d, p, mode); err != nil {
		return d, err
	}

	next := doc.Clone(d)
	loc, err := docpath.Resolve(next, p, mode)
	if err != nil {
		return d, err
	}

	v, err := fn(loc)
	if err != nil {
		return d, err
	}
	loc.Set(doc.Clone(v))
	return next, nil
}

func checkValue(v doc.Value) error {
	if err := doc.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return nil
}
