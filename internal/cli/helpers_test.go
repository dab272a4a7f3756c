package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syn-ce/os/internal/engine"
)

const (
	yardsDir     = "../../testdata/yards"
	scenariosDir = "../../testdata/scenarios"
)

// clearYardEnv unsets every YARD_* variable for the duration of the test.
func clearYardEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"YARD_DB", "YARD_LOG_LEVEL", "YARD_FORMAT", "YARD_TABLE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

// execute runs the root command with args and returns stdout.
// Run IDs are run-1, run-2, ...
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	clearYardEnv(t)
	return executeWith(t, &RootOptions{RunIDs: fixedIDs("run-1", "run-2", "run-3", "run-4")}, args...)
}

func fixedIDs(ids ...string) engine.RunIDGenerator {
	return engine.NewFixedGenerator(ids...)
}

func executeWith(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommandWithOptions(opts)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// envelope decodes a CLIResponse with a typed payload.
type envelope[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
	RunID  string    `json:"run_id"`
}

func decode[T any](t *testing.T, out string) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal([]byte(out), &env), "output: %s", out)
	return env
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "yard.db")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
