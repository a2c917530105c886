package schema

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/templates"
)

func validDocument() doc.Object {
	return doc.Object{
		"hero": doc.Object{"title": doc.String("כותרת"), "subtitle": doc.String("משנה")},
		"plans": doc.Array{
			doc.Object{
				"id":       doc.Number(1),
				"name":     doc.String("בסיסי"),
				"price":    doc.String("₪2,500"),
				"features": doc.Strings("a"),
				"videos":   doc.Array{doc.Object{"title": doc.String("v"), "url": doc.Null{}}},
			},
		},
		"terms": doc.Strings(),
	}
}

func TestValidate_Builtins(t *testing.T) {
	builtins, err := templates.Catalog()
	require.NoError(t, err)

	for _, b := range builtins {
		t.Run(b.ID, func(t *testing.T) {
			assert.NoError(t, Validate(b.Document))
		})
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(validDocument()))
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d doc.Object)
		mention string
	}{
		{
			name:    "missing title",
			mutate:  func(d doc.Object) { delete(d["hero"].(doc.Object), "title") },
			mention: "title",
		},
		{
			name:    "wrong price type",
			mutate:  func(d doc.Object) { d["plans"].(doc.Array)[0].(doc.Object)["price"] = doc.Bool(true) },
			mention: "price",
		},
		{
			name:    "unknown plan field",
			mutate:  func(d doc.Object) { d["plans"].(doc.Array)[0].(doc.Object)["bogus"] = doc.String("x") },
			mention: "bogus",
		},
		{
			name:    "feature not a string",
			mutate:  func(d doc.Object) { d["plans"].(doc.Array)[0].(doc.Object)["features"] = doc.Array{doc.Number(3)} },
			mention: "features",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDocument()
			tt.mutate(d)

			err := Validate(d)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %T: %v", err, err)
			require.NotEmpty(t, ve.Issues)
			assert.Contains(t, ve.Error(), tt.mention)
		})
	}
}

func TestValidate_NotAnObject(t *testing.T) {
	var ve *ValidationError
	assert.True(t, errors.As(Validate(doc.Strings("x")), &ve))
}

func TestValidate_UnserializableDocument(t *testing.T) {
	err := Validate(doc.Object{"hero": nil})
	assert.ErrorIs(t, err, doc.ErrNilValue)
}

func TestValidate_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, Validate(validDocument()))
		}()
	}
	wg.Wait()
}

func TestFormatPath(t *testing.T) {
	assert.Equal(t, "plans[0].price", formatPath([]string{"#Content", "plans", "0", "price"}))
	assert.Equal(t, "hero.title", formatPath([]string{"hero", "title"}))
	assert.Equal(t, "", formatPath(nil))
}

func TestIssueString(t *testing.T) {
	assert.Equal(t, "a.b: bad", Issue{Path: "a.b", Message: "bad"}.String())
	assert.Equal(t, "bad", Issue{Message: "bad"}.String())
}
