package docpath

import (
	"github.com/roach88/plandeck/internal/doc"
)

// Mode selects how Resolve treats the final step.
type Mode int

const (
	// ModeRead requires every step to address an existing value.
	ModeRead Mode = iota

	// ModeWrite requires every step to exist and returns the parent
	// container of the final step.
	ModeWrite

	// ModeInsert is ModeWrite except that a missing final object key is
	// "ready to receive". Intermediate steps must still exist.
	ModeInsert
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Location is the result of resolving a path: the container holding the
// final step, the step itself, and the value currently there.
type Location struct {
	// Parent is the Object or Array that the final step indexes into.
	Parent doc.Value

	// Step is the final step of the path.
	Step Step

	// Value is the addressed value. Nil when Exists is false.
	Value doc.Value

	// Exists is false only for a missing final key in ModeInsert.
	Exists bool
}

// Set stores v at the location, mutating Parent in place.
// Callers must own Parent (docstore resolves against a private copy).
func (l Location) Set(v doc.Value) {
	switch parent := l.Parent.(type) {
	case doc.Object:
		parent[l.Step.(FieldStep).Name] = v
	case doc.Array:
		parent[l.Step.(IndexStep).Index] = v
	}
}

// Resolve walks document one step at a time.
//
// Failures:
//   - field step on a non-object, or missing key: PATH_NOT_FOUND
//   - index step on a non-array: NOT_AN_ARRAY
//   - index >= length: INDEX_OUT_OF_RANGE
//
// In ModeInsert a missing final key yields a Location with Exists == false.
func Resolve(document doc.Value, p Path, mode Mode) (Location, error) {
	if len(p) == 0 {
		return Location{}, newMalformed("", "empty path")
	}

	cur := document
	for i, s := range p {
		last := i == len(p)-1

		switch st := s.(type) {
		case FieldStep:
			obj, ok := cur.(doc.Object)
			if !ok {
				return Location{}, newStepError(ErrCodePathNotFound, p, i,
					"cannot read field %q of %s", st.Name, doc.KindOf(cur))
			}
			v, ok := obj[st.Name]
			if !ok {
				if last && mode == ModeInsert {
					return Location{Parent: obj, Step: st}, nil
				}
				return Location{}, newStepError(ErrCodePathNotFound, p, i, "key %q not found", st.Name)
			}
			if last {
				return Location{Parent: obj, Step: st, Value: v, Exists: true}, nil
			}
			cur = v

		case IndexStep:
			arr, ok := cur.(doc.Array)
			if !ok {
				return Location{}, newStepError(ErrCodeNotAnArray, p, i,
					"cannot index %s with [%d]", doc.KindOf(cur), st.Index)
			}
			if st.Index < 0 || st.Index >= len(arr) {
				return Location{}, newStepError(ErrCodeIndexOutOfRange, p, i,
					"index %d out of range for array of length %d", st.Index, len(arr))
			}
			if last {
				return Location{Parent: arr, Step: st, Value: arr[st.Index], Exists: true}, nil
			}
			cur = arr[st.Index]

		default:
			return Location{}, newStepError(ErrCodeMalformedPath, p, i, "unknown step type %T", s)
		}
	}

	// unreachable: the loop returns on the last step
	return Location{}, newMalformed(p.String(), "empty path")
}

// Lookup resolves p in read mode and returns the addressed value.
func Lookup(document doc.Value, p Path) (doc.Value, error) {
	loc, err := Resolve(document, p, ModeRead)
	if err != nil {
		return nil, err
	}
	return loc.Value, nil
}
