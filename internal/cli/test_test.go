package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoWagons = `name: two_wagons
description: "reverse pair"
parking: [2, 1]
expect:
  main: [1, 2]
  moves: 2
`

func TestTestCommandRunsScenarios(t *testing.T) {
	out, err := execute(t, "test", scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ two_wagons (2 moves)")
	assert.Contains(t, out, "✓ example_no_ambiguity (10 moves)")
	assert.Contains(t, out, "Test Summary: 8 passed, 0 failed, 8 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	out, err := execute(t, "--format", "json", "test", scenariosDir, "--filter", "split_*")
	require.NoError(t, err)
	env := decode[TestResult](t, out)
	assert.Equal(t, 3, env.Data.Total)
	assert.Equal(t, 3, env.Data.Passed)
	for _, s := range env.Data.Scenarios {
		assert.True(t, s.Pass, s.Name)
	}
}

func TestTestCommandNoMatches(t *testing.T) {
	out, err := execute(t, "test", scenariosDir, "--filter", "zzz*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrong.yaml", `name: wrong
description: "expects one move too many"
parking: [2, 1]
expect:
  moves: 3
`)

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")

	out, err = execute(t, "--format", "json", "test", dir)
	require.Error(t, err)
	env := decode[TestResult](t, out)
	assert.Equal(t, "E_TEST_FAILED", env.Error.Code)
	require.Len(t, env.Data.Scenarios, 1)
	assert.NotEmpty(t, env.Data.Scenarios[0].Errors)
}

func TestTestCommandInvalidScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\nparking: [1]\nsurprise: true\n")

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandGoldenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "two_wagons.yaml", twoWagons)

	out, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ two_wagons (2 moves) (golden updated)")

	golden := filepath.Join(dir, "golden", "two_wagons.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), "two_wagons")

	_, err = execute(t, "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, append(data, '\n'), 0o644))
	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandMissingDirectory(t *testing.T) {
	_, err := execute(t, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}
