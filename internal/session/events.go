package session

import (
	"fmt"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/docpath"
	"github.com/roach88/plandeck/internal/docstore"
)

// DefaultItem is appended by AddItem when no value is given ("new item").
const DefaultItem = doc.String("פריט חדש")

// Event is an edit originating from the UI.
type Event interface {
	apply(d doc.Value) (doc.Value, error)
	fmt.Stringer
}

// EditText replaces an existing value.
type EditText struct {
	Path  docpath.Path
	Value doc.Value
}

func (e EditText) apply(d doc.Value) (doc.Value, error) {
	return docstore.Set(d, e.Path, e.Value)
}

func (e EditText) String() string { return "edit " + e.Path.String() }

// FillField sets a value, creating the final key if it is missing.
type FillField struct {
	Path  docpath.Path
	Value doc.Value
}

func (e FillField) apply(d doc.Value) (doc.Value, error) {
	return docstore.Put(d, e.Path, e.Value)
}

func (e FillField) String() string { return "fill " + e.Path.String() }

// AddItem appends Value, or DefaultItem when Value is nil, to an array.
type AddItem struct {
	Path  docpath.Path
	Value doc.Value
}

func (e AddItem) apply(d doc.Value) (doc.Value, error) {
	v := e.Value
	if v == nil {
		v = DefaultItem
	}
	return docstore.InsertItem(d, e.Path, v)
}

func (e AddItem) String() string { return "add " + e.Path.String() }

// RemoveItem deletes one array element.
type RemoveItem struct {
	Path  docpath.Path
	Index int
}

func (e RemoveItem) apply(d doc.Value) (doc.Value, error) {
	return docstore.RemoveItem(d, e.Path, e.Index)
}

func (e RemoveItem) String() string { return fmt.Sprintf("remove %s[%d]", e.Path, e.Index) }
