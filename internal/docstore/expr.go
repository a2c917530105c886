package docstore

import (
	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/docpath"
)

// The *Expr variants accept a textual path expression. Each parses the
// expression once and delegates; a MALFORMED_PATH error leaves d unchanged.

// GetExpr is Get with a path expression.
func GetExpr(d doc.Value, expr string) (doc.Value, error) {
	p, err := docpath.Parse(expr)
	if err != nil {
		return nil, err
	}
	return Get(d, p)
}

// SetExpr is Set with a path expression.
func SetExpr(d doc.Value, expr string, v doc.Value) (doc.Value, error) {
	p, err := docpath.Parse(expr)
	if err != nil {
		return d, err
	}
	return Set(d, p, v)
}

// PutExpr is Put with a path expression.
func PutExpr(d doc.Value, expr string, v doc.Value) (doc.Value, error) {
	p, err := docpath.Parse(expr)
	if err != nil {
		return d, err
	}
	return Put(d, p, v)
}

// InsertItemExpr is InsertItem with a path expression.
func InsertItemExpr(d doc.Value, expr string, v doc.Value) (doc.Value, error) {
	p, err := docpath.Parse(expr)
	if err != nil {
		return d, err
	}
	return InsertItem(d, p, v)
}

// RemoveItemExpr is RemoveItem with a path expression.
func RemoveItemExpr(d doc.Value, expr string, index int) (doc.Value, error) {
	p, err := docpath.Parse(expr)
	if err != nil {
		return d, err
	}
	return RemoveItem(d, p, index)
}
