// Package templates manages named document snapshots.
//
// A Registry holds the built-in catalog followed by user-defined templates.
// User-defined templates are persisted as one JSON array under a single
// storage key; built-ins come from the embedded catalog and are never
// written or removed.
//
// A Registry is owned by one editor and is not safe for concurrent use.
package templates

import (
	"github.com/roach88/plandeck/internal/doc"
)

// Origin tells built-in templates from user-defined ones.
type Origin int

const (
	Builtin Origin = iota
	UserDefined
)

func (o Origin) String() string {
	switch o {
	case Builtin:
		return "builtin"
	case UserDefined:
		return "user"
	default:
		return "unknown"
	}
}

// Template is a named document snapshot.
// Names are display labels and need not be unique; ids are unique.
type Template struct {
	ID       string
	Name     string
	Document doc.Value
	Origin   Origin
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	t.Document = doc.Clone(t.Document)
	return t
}

func cloneAll(ts []Template) []Template {
	out := make([]Template, len(ts))
	for i, t := range ts {
		out[i] = t.Clone()
	}
	return out
}
