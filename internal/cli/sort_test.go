package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syn-ce/os/internal/ir"
)

func TestSortInline(t *testing.T) {
	out, err := execute(t, "sort", "--parking", "3,1,2,1,3,2")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Sorted 6 wagon(s) in 10 move(s)")
	assert.Contains(t, out, "Decisions: (none) (0 used)")
	assert.Contains(t, out, "Main:      [1 1 2 2 3 3]")
	assert.NotContains(t, out, "Run:")
}

func TestSortDecisionChangesMoves(t *testing.T) {
	tests := []struct {
		decisions string
		moves     int
	}{
		{"L", 9},
		{"LEFT", 9},
		{"R", 8},
		{"", 9},
	}
	for _, tt := range tests {
		t.Run("decisions="+tt.decisions, func(t *testing.T) {
			out, err := execute(t, "--format", "json", "sort", "--parking", "2,1,3,1,2", "--decisions", tt.decisions)
			require.NoError(t, err)
			env := decode[SortResult](t, out)
			assert.Equal(t, "ok", env.Status)
			assert.Equal(t, tt.moves, env.Data.MoveCount)
			assert.Equal(t, []ir.Wagon{1, 1, 2, 2, 3}, env.Data.Main)
			assert.Len(t, env.Data.Moves, tt.moves)
		})
	}
}

func TestSortPrintTable(t *testing.T) {
	out, err := execute(t, "sort", "--parking", "2,1", "--print")
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(out), "ACTION")
	assert.Contains(t, out, "parking")

	md, err := execute(t, "sort", "--parking", "2,1", "--print", "--table", "markdown")
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(md), "| ACTION |")
}

func TestSortSearchOracle(t *testing.T) {
	out, err := execute(t, "--format", "json", "sort", "--parking", "2,1,3,1,2", "--oracle", "search")
	require.NoError(t, err)
	env := decode[SortResult](t, out)
	assert.Equal(t, "R", env.Data.Decisions)
	assert.Equal(t, 8, env.Data.MoveCount)
	assert.Equal(t, 1, env.Data.DecisionsUsed)
}

func TestSortFromYardFile(t *testing.T) {
	out, err := execute(t, "--format", "json", "sort", "--file", yardsDir, "--yard", "split")
	require.NoError(t, err)
	env := decode[SortResult](t, out)
	assert.Equal(t, "split", env.Data.Name)
	assert.Equal(t, 8, env.Data.MoveCount)

	// The yard asks for the search oracle itself.
	out, err = execute(t, "--format", "json", "sort", "--file", yardsDir, "--yard", "split_search")
	require.NoError(t, err)
	assert.Equal(t, 8, decode[SortResult](t, out).Data.MoveCount)
}

func TestSortPersistsRun(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, "sort", "--parking", "3,1,2", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Run:       run-1")

	out, err = execute(t, "--format", "json", "trace", "--db", db, "--run", "run-1")
	require.NoError(t, err)
	env := decode[TraceResult](t, out)
	assert.Equal(t, ir.RunCompleted, env.Data.Run.Status)
	assert.Equal(t, 4, env.Data.Run.MoveCount)
	assert.Len(t, env.Data.Moves, 4)
	assert.Equal(t, "4 moves, 3 onto main", env.Data.Summary)
}

func TestSortMalformedDecisions(t *testing.T) {
	out, err := execute(t, "sort", "--parking", "2,1,3,1,2", "--decisions", "LX")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [MALFORMED_DECISIONS]")
	assert.Contains(t, out, `invalid token "X"`)
}

func TestSortMalformedDecisionInYardFileIsRecorded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.cue", `yard: bad: {
	parking: [2, 1, 3, 1, 2]
	decisions: ["LEFT", "UP"]
}
`)
	db := tempDB(t)

	out, err := execute(t, "sort", "--file", dir, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Sort failed after 0 move(s)")
	assert.Contains(t, out, "MALFORMED_DECISIONS")

	out, err = execute(t, "trace", "--db", db, "--run", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Run run-1 (bad): failed")
	assert.Contains(t, out, "0 moves, 0 onto main")
}

func TestSortCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut string
	}{
		{"no yard", []string{"sort"}, "--parking or --file is required"},
		{"bad parking", []string{"sort", "--parking", "3,x"}, "invalid --parking"},
		{"bad oracle", []string{"sort", "--parking", "1", "--oracle", "greedy"}, `invalid oracle "greedy"`},
		{"search with decisions", []string{"sort", "--parking", "2,1", "--oracle", "search", "--decisions", "L"}, "cannot be combined with the search oracle"},
		{"file with parking", []string{"sort", "--file", yardsDir, "--parking", "1"}, "cannot be combined"},
		{"ambiguous yard", []string{"sort", "--file", yardsDir}, "--yard is required, choose one of: example, pair, split, split_search"},
		{"unknown yard", []string{"sort", "--file", yardsDir, "--yard", "hump"}, `yard "hump" not found`},
		{"missing file", []string{"sort", "--file", "nope.cue"}, "Error [E005]"},
		{"bad table", []string{"sort", "--parking", "1", "--table", "html"}, "unknown table mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}
