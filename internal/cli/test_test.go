package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: sums
cases:
  - name: add
    input: "2+3"
    expect: "5"
  - name: zero
    input: "1/0"
    error: DIVISION_BY_ZERO
`

const failingScenario = `name: wrong
cases:
  - name: add
    input: "2+3"
    expect: "6"
`

func TestTestCommand_HarnessScenarios(t *testing.T) {
	out, _, err := execute(t, "test", "../harness/testdata/scenarios")

	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ full")
	assert.Contains(t, out, "✓ arithmetic")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommand_MissingArgs(t *testing.T) {
	_, _, err := execute(t, "test")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestTestCommand_NonExistentPath(t *testing.T) {
	_, _, err := execute(t, "test", "/nonexistent/scenarios")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_EmptyDirectory(t *testing.T) {
	out, _, err := execute(t, "test", t.TempDir())

	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scenarios/wrong.yaml", failingScenario)

	out, _, err := execute(t, "test", filepath.Join(dir, "scenarios"))

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, `expected "6", got "5"`)
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\n")

	out, _, err := execute(t, "test", filepath.Join(dir, "broken.yaml"))

	require.Error(t, err)
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scenarios/sums.yaml", passingScenario)
	writeFile(t, dir, "scenarios/wrong.yaml", failingScenario)

	out, _, err := execute(t, "test", filepath.Join(dir, "scenarios"), "--filter", "sum*")

	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_UpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	scenarios := filepath.Join(dir, "scenarios")
	writeFile(t, dir, "scenarios/sums.yaml", passingScenario)

	_, _, err := execute(t, "test", scenarios, "--update")
	require.NoError(t, err)

	goldenPath := filepath.Join(dir, "golden", "sums.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"error_code": "DIVISION_BY_ZERO"`)

	_, _, err = execute(t, "test", scenarios)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte("{}\n"), 0o644))
	out, _, err := execute(t, "test", scenarios)
	require.Error(t, err)
	assert.Contains(t, out, "do not match golden file")
}

func TestTestCommand_GoldenOverride(t *testing.T) {
	dir := t.TempDir()
	scenario := writeFile(t, dir, "sums.yaml", passingScenario)
	goldenDir := filepath.Join(dir, "snapshots")

	_, _, err := execute(t, "test", scenario, "--golden", goldenDir, "--update")

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(goldenDir, "sums.golden"))
}

func TestTestCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scenarios/sums.yaml", passingScenario)
	writeFile(t, dir, "scenarios/wrong.yaml", failingScenario)

	out, _, err := execute(t, "--format", "json", "test", filepath.Join(dir, "scenarios"))

	require.Error(t, err)
	resp := decode(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)

	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, details["passed"])
	assert.EqualValues(t, 1, details["failed"])
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("testdata", "golden", "full.golden"),
		goldenFilePath(filepath.Join("testdata", "scenarios", "full.yaml"), "", "full"))
	assert.Equal(t,
		filepath.Join("out", "full.golden"),
		goldenFilePath(filepath.Join("testdata", "scenarios", "full.yaml"), "out", "full"))
}
