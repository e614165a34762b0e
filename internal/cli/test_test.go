package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tinyql/internal/harness"
	"github.com/roach88/tinyql/internal/value"
)

const demoScenario = `name: demo
description: Teenagers by label.
label: name
documents:
  - {name: bob, age: 12}
  - {name: alice, age: 14}
cases:
  - name: teens
    query: {age: {$gt: 12}}
    expect: {labels: [alice]}
`

const failingScenario = `name: broken
description: Expects the wrong document.
documents:
  - {name: bob}
cases:
  - name: wrong
    query: {name: bob}
    expect: {count: 2}
`

func writeScenario(t *testing.T, dir, file, content string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTestCommand_Pass(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "demo.yaml", demoScenario)

	stdout, _, err := execute(t, "", "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ demo (1 cases)")
	assert.Contains(t, stdout, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, stdout, "All scenarios passed")
}

func TestTestCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "demo.yaml", demoScenario)
	writeScenario(t, dir, "broken.yaml", failingScenario)

	stdout, _, err := execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ broken")
	assert.Contains(t, stdout, "wrong: count: expected 2, got 1")
	assert.Contains(t, stdout, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommand_Golden(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "demo.yaml", demoScenario)

	stdout, _, err := execute(t, "", "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "demo.golden"))
	require.NoError(t, err)

	scenario, err := harness.LoadScenario(path)
	require.NoError(t, err)
	result, err := harness.Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, string(harness.Report(result)), string(golden))

	_, _, err = execute(t, "", "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "demo.golden"), []byte("stale\n"), 0644))
	stdout, _, err = execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "does not match golden file")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "demo.yaml", demoScenario)
	writeScenario(t, dir, "broken.yaml", failingScenario)

	stdout, _, err := execute(t, "", "test", dir, "--filter", "de*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.NotContains(t, stdout, "broken")

	_, _, err = execute(t, "", "test", dir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "demo.yaml", demoScenario)
	writeScenario(t, dir, "broken.yaml", failingScenario)

	stdout, _, err := execute(t, "", "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	v, err := value.Decode([]byte(stdout))
	require.NoError(t, err)
	resp := v.(map[string]any)
	assert.Equal(t, "error", resp["status"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, json.Number("1"), data["passed"])
	assert.Equal(t, json.Number("1"), data["failed"])
	assert.Equal(t, "E_TEST_FAILED", resp["error"].(map[string]any)["code"])
}

func TestTestCommand_Errors(t *testing.T) {
	_, stderr, err := execute(t, "", "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "scenarios directory not found")

	stdout, _, err := execute(t, "", "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")

	_, stderr, err = execute(t, "", "test", t.TempDir(), "--filter", "players*")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "Error [E003]")
	assert.Contains(t, stderr, `match "players*"`)

	_, _, err = execute(t, "", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestFindScenarioFiles_SkipsGolden(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "demo.yaml", demoScenario)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	writeScenario(t, filepath.Join(dir, "golden"), "stray.yaml", demoScenario)
	writeScenario(t, dir, "notes.txt", "ignored")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "demo.yaml")}, files)
}
