package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `name: title-edit
description: Editing the title while editing succeeds.
document:
  hero: {title: "א", subtitle: ""}
  plans: []
  terms: []
steps:
  - op: toggle
  - op: set
    path: hero.title
    value: "ב"
assertions:
  - type: value
    path: hero.title
    value: "ב"
  - type: dirty
`

func writeScenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestTest_HarnessScenarios(t *testing.T) {
	var res TestResult
	out := execute(t, "", "test", "../harness/testdata/scenarios", "--format", "json")
	require.NoError(t, out.err, "stdout: %s", out.stdout)
	jsonData(t, out.stdout, &res)

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 4, res.Passed)
	assert.Zero(t, res.Failed)
}

func TestTest_UpdateThenCompare(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"title.yaml": scenarioYAML})
	golden := filepath.Join(filepath.Dir(dir), "golden", "title-edit.golden")

	out := execute(t, "", "test", dir, "--update")
	require.NoError(t, out.err)
	assert.Contains(t, out.stdout, "✓ title-edit")
	assert.FileExists(t, golden)

	out = execute(t, "", "test", dir)
	require.NoError(t, out.err)
	assert.Contains(t, out.stdout, "1 passed, 0 failed, 1 total")

	require.NoError(t, os.WriteFile(golden, []byte("{}"), 0644))
	out = execute(t, "", "test", dir)
	require.Error(t, out.err)
	assert.Equal(t, ExitFailure, GetExitCode(out.err))
	assert.Contains(t, out.stdout, "✗ title-edit")
	assert.Contains(t, out.stdout, "does not match golden file")
}

func TestTest_FailingScenario(t *testing.T) {
	broken := scenarioYAML + "  - type: mode\n    mode: viewing\n"
	dir := writeScenarioDir(t, map[string]string{
		"broken.yaml": broken,
		"typo.yaml":   "name: typo\ndescription: d\nsteps: [{op: toggle}]\nassertion: []\n",
	})

	out := execute(t, "", "test", dir)
	require.Error(t, out.err)
	assert.Equal(t, ExitFailure, GetExitCode(out.err))
	assert.Contains(t, out.stdout, "✗ title-edit")
	assert.Contains(t, out.stdout, "Assertion failed: mode")
	assert.Contains(t, out.stdout, "✗ typo.yaml")
	assert.Contains(t, out.stdout, "0 passed, 2 failed, 2 total")
}

func TestTest_Filter(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"title.yaml": scenarioYAML,
		"other.yaml": "not: [valid",
	})

	out := execute(t, "", "test", dir, "--filter", "title*.yaml")
	require.NoError(t, out.err)
	assert.Contains(t, out.stdout, "1 passed, 0 failed, 1 total")
}

func TestTest_MissingDirectory(t *testing.T) {
	out := execute(t, "", "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, out.err)
	assert.Equal(t, ExitCommandError, GetExitCode(out.err))
}

func TestTest_Empty(t *testing.T) {
	out := execute(t, "", "test", writeScenarioDir(t, nil))
	require.NoError(t, out.err)
	assert.Contains(t, out.stdout, "No scenarios found.")
}
