package cli

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plandeck/internal/doc"
	"github.com/roach88/plandeck/internal/docstore"
	"github.com/roach88/plandeck/internal/share"
)

func script(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// linkIn returns the first share link printed in out.
func linkIn(t *testing.T, out string) string {
	t.Helper()
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), "http") {
			return sc.Text()
		}
	}
	t.Fatalf("no link in output:\n%s", out)
	return ""
}

func TestEdit_EditAndSave(t *testing.T) {
	res := execute(t, script(
		"toggle",
		"set hero.title שלום עולם",
		"add plans[0].features",
		"save",
		"quit",
	), "--db", testDB(t), "edit")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "editing")
	assert.Contains(t, res.stdout, `"שלום עולם"`)
	assert.Contains(t, res.stdout, "הקישור נוצר בשורת הכתובת")

	token, ok := share.TokenFrom(linkIn(t, res.stdout), "")
	require.True(t, ok)
	d, err := share.Decode(token)
	require.NoError(t, err)

	title, err := docstore.GetExpr(d, "hero.title")
	require.NoError(t, err)
	assert.Equal(t, doc.String("שלום עולם"), title)
	features, err := docstore.GetExpr(d, "plans[0].features")
	require.NoError(t, err)
	assert.Equal(t, doc.String("פריט חדש"), features.(doc.Array)[3])
}

func TestEdit_OpensLink(t *testing.T) {
	d, err := doc.Parse([]byte(sampleDoc))
	require.NoError(t, err)
	token, err := share.Encode(d)
	require.NoError(t, err)
	link, err := share.WithToken("https://offers.example/", token, "")
	require.NoError(t, err)

	res := execute(t, script("get plans[0].packages[1]", "dirty"), "--db", testDB(t), "edit", "--url", link)
	require.NoError(t, res.err)
	assert.Equal(t, "\"רבעוני\"\nfalse\n", res.stdout)
}

func TestEdit_ReadOnlyAndErrorsContinue(t *testing.T) {
	res := execute(t, script(
		"set hero.title x",
		"frobnicate",
		"toggle",
		"remove plans[0].packages 9",
		"get hero.missing",
		"mode",
	), "--db", testDB(t), "edit")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "Error [E_READ_ONLY]")
	assert.Contains(t, res.stdout, "Error [E_USAGE]: unknown command")
	assert.Contains(t, res.stdout, "Error [INDEX_OUT_OF_RANGE]")
	assert.Contains(t, res.stdout, "Error [PATH_NOT_FOUND]")
	assert.True(t, strings.HasSuffix(res.stdout, "editing\n"), res.stdout)
}

func TestEdit_Templates(t *testing.T) {
	db := testDB(t)

	res := execute(t, script(
		"toggle",
		"set hero.title שמור",
		"save-template חתונות",
		"delete-template video-marketing",
		"load event-coverage",
		"templates",
	), "--db", db, "edit")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "saved template custom-")
	assert.Contains(t, res.stdout, "Error [E_BUILTIN]")
	assert.Contains(t, res.stdout, "חתונות")

	// The template survives the session.
	list := listTemplates(t, db)
	require.Len(t, list.Templates, 3)
	assert.Equal(t, "חתונות", list.Templates[2].Name)
}

func TestEdit_Offer(t *testing.T) {
	res := execute(t, script("offer 1 2", "offer 0", "offer 9"), "--db", testDB(t), "edit")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "מקצועי - שנתי: שנתי\n")
	assert.Contains(t, res.stdout, "בסיסי: ₪2,500\n")
	assert.Contains(t, res.stdout, "Error [INDEX_OUT_OF_RANGE]")
}

func TestEdit_JSONReplies(t *testing.T) {
	res := execute(t, script("toggle", "get plans[0].price", "save"),
		"--db", testDB(t), "--format", "json", "edit", "--osc52")
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)

	var mode string
	jsonData(t, lines[0], &mode)
	assert.Equal(t, "editing", mode)

	var save SaveReply
	jsonData(t, lines[2], &save)
	assert.Equal(t, "copied", save.Status)
	assert.NotEmpty(t, save.Token)

	// The clipboard escape goes to the terminal, not stdout.
	assert.Contains(t, res.stderr, "\x1b]52;c;")
	assert.True(t, json.Valid([]byte(lines[1])))
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		wantErr string
	}{
		{"toggle", ""},
		{"set hero.title", "usage: set <path> <value>"},
		{"get", "usage: get <path>"},
		{"get plans[", "MALFORMED_PATH"},
		{"remove plans[0].features x", "usage: remove"},
		{"offer one", "usage: offer"},
		{"load", "usage: load"},
		{"nope", `unknown command "nope"`},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := parseLine(tt.line)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, cmd.Run)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := parseLine("quit")
	assert.ErrorIs(t, err, errQuit)
}
