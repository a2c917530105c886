package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plandeck/internal/templates"
)

func listTemplates(t *testing.T, db string) TemplateList {
	t.Helper()
	res := execute(t, "", "--db", db, "--format", "json", "templates", "list")
	require.NoError(t, res.err)
	var list TemplateList
	jsonData(t, res.stdout, &list)
	return list
}

func TestTemplates_ListBuiltins(t *testing.T) {
	db := testDB(t)

	list := listTemplates(t, db)
	assert.Equal(t, int64(0), list.Revision)
	require.Len(t, list.Templates, 2)
	assert.Equal(t, TemplateInfo{ID: "video-marketing", Name: "שיווק בווידאו", Origin: "builtin"}, list.Templates[0])

	res := execute(t, "", "--db", db, "templates", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "ID")
	assert.Contains(t, res.stdout, "video-marketing")
	assert.Contains(t, res.stdout, "2 template(s), slot revision 0")
}

func TestTemplates_SaveShowDelete(t *testing.T) {
	db := testDB(t)

	res := execute(t, "", "--db", db, "--format", "json", "templates", "save", "  חבילת חתונה ", "--doc", writeDoc(t, sampleDoc))
	require.NoError(t, res.err)
	var saved TemplateDetail
	jsonData(t, res.stdout, &saved)
	assert.True(t, strings.HasPrefix(saved.ID, templates.IDPrefix), saved.ID)
	assert.Equal(t, "חבילת חתונה", saved.Name)
	assert.Equal(t, "user", saved.Origin)

	// A new process sees the stored template.
	list := listTemplates(t, db)
	assert.Equal(t, int64(1), list.Revision)
	require.Len(t, list.Templates, 3)
	assert.Equal(t, saved.ID, list.Templates[2].ID)

	res = execute(t, "", "--db", db, "templates", "show", saved.ID)
	require.NoError(t, res.err)
	assert.Equal(t, sampleDoc+"\n", res.stdout)

	res = execute(t, "", "--db", db, "templates", "delete", saved.ID)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "deleted template "+saved.ID)

	list = listTemplates(t, db)
	assert.Equal(t, int64(2), list.Revision)
	assert.Len(t, list.Templates, 2)
}

func TestTemplates_Errors(t *testing.T) {
	db := testDB(t)
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"delete builtin", []string{"templates", "delete", "video-marketing"}, "built-in"},
		{"delete unknown", []string{"templates", "delete", "custom-missing"}, "not found"},
		{"show unknown", []string{"templates", "show", "custom-missing"}, "not found"},
		{"empty name", []string{"templates", "save", "   "}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, "", append([]string{"--db", db}, tt.args...)...)
			require.Error(t, res.err)
			assert.Equal(t, ExitFailure, GetExitCode(res.err))
			assert.Contains(t, res.err.Error(), tt.wantMsg)
		})
	}

	// Rejections leave the slot untouched.
	assert.Equal(t, int64(0), listTemplates(t, db).Revision)
}
