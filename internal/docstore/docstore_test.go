package docstore

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/docpath"
)

func offerDocument() doc.Object {
	return doc.Object{
		"hero": doc.Object{"title": doc.String("הצעת מחיר"), "subtitle": doc.String("וידאו")},
		"plans": doc.Array{
			doc.Object{
				"id":       doc.Number(1),
				"name":     doc.String("A"),
				"price":    doc.String("₪2,500"),
				"features": doc.Strings("x"),
			},
			doc.Object{
				"id":       doc.Number(2),
				"name":     doc.String("B"),
				"price":    doc.String("₪4,000"),
				"features": doc.Strings("y", "z"),
				"packages": doc.Strings("p1", "p2", "p3"),
			},
		},
		"terms": doc.Strings("t1", "t2"),
	}
}

// sameContainer reports whether two values share the same top-level map.
func sameContainer(a, b doc.Value) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestGetReturnsCopy(t *testing.T) {
	d := offerDocument()

	v, err := GetExpr(d, "plans[1].packages")
	require.NoError(t, err)
	v.(doc.Array)[0] = doc.String("mutated")

	again, err := GetExpr(d, "plans[1].packages[0]")
	require.NoError(t, err)
	assert.Equal(t, doc.String("p1"), again)
}

func TestGetNotFound(t *testing.T) {
	_, err := GetExpr(offerDocument(), "hero.cta")
	assert.True(t, docpath.IsNotFound(err))
}

func TestSetThenGet(t *testing.T) {
	paths := []string{"hero.title", "plans[0].name", "plans[1].packages[2]", "terms", "plans[1]"}
	values := []doc.Value{
		doc.String("חדש"),
		doc.Number(9),
		doc.Null{},
		doc.Strings("only"),
		doc.Object{"id": doc.Number(3)},
	}

	for _, expr := range paths {
		for i, v := range values {
			t.Run(fmt.Sprintf("%s/%d", expr, i), func(t *testing.T) {
				d := offerDocument()
				before := doc.Clone(d)

				next, err := SetExpr(d, expr, v)
				require.NoError(t, err)

				got, err := GetExpr(next, expr)
				require.NoError(t, err)
				assert.True(t, doc.Equal(v, got))

				assert.True(t, doc.Equal(before, d), "input snapshot must not change")
			})
		}
	}
}

func TestSetDoesNotAliasValue(t *testing.T) {
	d := offerDocument()
	features := doc.Strings("a")

	next, err := SetExpr(d, "plans[0].features", features)
	require.NoError(t, err)
	features[0] = doc.String("changed")

	got, err := GetExpr(next, "plans[0].features[0]")
	require.NoError(t, err)
	assert.Equal(t, doc.String("a"), got)
}

func TestSetOutOfRangeReturnsInput(t *testing.T) {
	d := offerDocument()

	next, err := SetExpr(d, "plans[5].name", doc.String("X"))
	require.Error(t, err)
	assert.True(t, docpath.IsOutOfRange(err))
	assert.True(t, sameContainer(d, next), "failed set must return the input snapshot itself")
	assert.True(t, doc.Equal(offerDocument(), next))
}

func TestSetMissingKeyFails(t *testing.T) {
	d := offerDocument()

	next, err := SetExpr(d, "plans[0].goal", doc.String("g"))
	assert.True(t, docpath.IsNotFound(err))
	assert.True(t, sameContainer(d, next))
}

func TestSetMalformedReturnsInput(t *testing.T) {
	d := offerDocument()

	next, err := SetExpr(d, "plans[", doc.String("g"))
	assert.True(t, docpath.IsMalformed(err))
	assert.True(t, sameContainer(d, next))
}

func TestPutCreatesFinalKey(t *testing.T) {
	d := offerDocument()

	next, err := PutExpr(d, "plans[0].goal", doc.String("מטרה"))
	require.NoError(t, err)

	got, err := GetExpr(next, "plans[0].goal")
	require.NoError(t, err)
	assert.Equal(t, doc.String("מטרה"), got)

	_, err = GetExpr(d, "plans[0].goal")
	assert.True(t, docpath.IsNotFound(err), "input must not gain the key")

	_, err = PutExpr(d, "plans[0].meta.goal", doc.String("x"))
	assert.True(t, docpath.IsNotFound(err), "no auto-vivification of intermediate containers")
}

func TestInsertItemAppends(t *testing.T) {
	d := offerDocument()

	next, err := InsertItemExpr(d, "plans[1].features", doc.String("new"))
	require.NoError(t, err)

	got, err := GetExpr(next, "plans[1].features")
	require.NoError(t, err)
	arr := got.(doc.Array)
	require.Len(t, arr, 3)
	assert.Equal(t, doc.String("new"), arr[2])
	assert.Equal(t, doc.Strings("y", "z"), arr[:2])

	orig, err := GetExpr(d, "plans[1].features")
	require.NoError(t, err)
	assert.Len(t, orig.(doc.Array), 2)
}

func TestInsertItemNotAnArray(t *testing.T) {
	d := offerDocument()

	next, err := InsertItemExpr(d, "hero.title", doc.String("x"))
	require.Error(t, err)
	assert.True(t, docpath.IsNotAnArray(err))
	assert.True(t, sameContainer(d, next))
}

func TestRemoveItemPreservesOrder(t *testing.T) {
	for i := 0; i < 3; i++ {
		t.Run(fmt.Sprintf("index %d", i), func(t *testing.T) {
			d := offerDocument()
			next, err := RemoveItemExpr(d, "plans[1].packages", i)
			require.NoError(t, err)

			got, err := GetExpr(next, "plans[1].packages")
			require.NoError(t, err)

			want := doc.Strings("p1", "p2", "p3")
			want = append(want[:i:i], want[i+1:]...)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("packages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRemoveItemFailures(t *testing.T) {
	d := offerDocument()

	next, err := RemoveItemExpr(d, "terms", 2)
	assert.True(t, docpath.IsOutOfRange(err))
	assert.True(t, sameContainer(d, next))

	next, err = RemoveItemExpr(d, "terms", -1)
	assert.True(t, docpath.IsOutOfRange(err))
	assert.True(t, sameContainer(d, next))

	next, err = RemoveItemExpr(d, "hero", 0)
	assert.True(t, docpath.IsNotAnArray(err))
	assert.True(t, sameContainer(d, next))
}

func TestHebrewInsertRemoveScenario(t *testing.T) {
	d := doc.Value(doc.Object{
		"plans": doc.Array{
			doc.Object{"id": doc.Number(1), "name": doc.String("A"), "features": doc.Strings("x")},
		},
	})

	d, err := InsertItemExpr(d, "plans[0].features", doc.String("פריט חדש"))
	require.NoError(t, err)
	got, err := GetExpr(d, "plans[0].features")
	require.NoError(t, err)
	assert.Equal(t, doc.Strings("x", "פריט חדש"), got)

	d, err = RemoveItemExpr(d, "plans[0].features", 0)
	require.NoError(t, err)
	got, err = GetExpr(d, "plans[0].features")
	require.NoError(t, err)
	assert.Equal(t, doc.Strings("פריט חדש"), got)
}

func TestArrayRootDocument(t *testing.T) {
	d := doc.Value(doc.Array{doc.Object{"items": doc.Strings("a")}})

	// Paths always start with a field step, so an array root has no
	// addressable children.
	_, err := GetExpr(d, "items")
	assert.True(t, docpath.IsNotFound(err))
}

func TestWritesRejectInvalidValues(t *testing.T) {
	invalid := []struct {
		name  string
		value doc.Value
		cause error
	}{
		{"nil", nil, doc.ErrNilValue},
		{"invalid utf8", doc.String("a\xffb"), doc.ErrInvalidUTF8},
		{"nested invalid utf8", doc.Object{"label": doc.String("\xfe")}, doc.ErrInvalidUTF8},
		{"non-finite", doc.Number(math.Inf(1)), doc.ErrNonFinite},
	}
	writes := []struct {
		name string
		run  func(d doc.Value, v doc.Value) (doc.Value, error)
	}{
		{"set", func(d, v doc.Value) (doc.Value, error) { return SetExpr(d, "hero.title", v) }},
		{"put", func(d, v doc.Value) (doc.Value, error) { return PutExpr(d, "hero.badge", v) }},
		{"insert", func(d, v doc.Value) (doc.Value, error) { return InsertItemExpr(d, "terms", v) }},
	}

	for _, w := range writes {
		for _, tt := range invalid {
			t.Run(w.name+"/"+tt.name, func(t *testing.T) {
				d := offerDocument()

				next, err := w.run(d, tt.value)
				require.ErrorIs(t, err, ErrInvalidValue)
				assert.ErrorIs(t, err, tt.cause)
				assert.True(t, sameContainer(d, next), "rejected write must return the input snapshot itself")
				assert.True(t, doc.Equal(offerDocument(), next))
			})
		}
	}
}
