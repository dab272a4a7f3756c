package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanSearchByDefault(t *testing.T) {
	out, err := execute(t, "plan", "--parking", "2,1,3,1,2")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan for cli (search oracle)")
	assert.Contains(t, out, "Decisions:   R")
	assert.Contains(t, out, "Ambiguities: 1")
	assert.Contains(t, out, "Moves:       8")
}

func TestPlanEvaluatesGivenDecisions(t *testing.T) {
	out, err := execute(t, "--format", "json", "plan", "--parking", "2,1,3,1,2", "--decisions", "L")
	require.NoError(t, err)
	env := decode[PlanResult](t, out)
	assert.Equal(t, "static", env.Data.Oracle)
	assert.Equal(t, "L", env.Data.Decisions)
	assert.Equal(t, 9, env.Data.MoveCount)
	assert.NotEmpty(t, env.Data.PlanDigest)
}

func TestPlanWithoutAmbiguity(t *testing.T) {
	out, err := execute(t, "--format", "json", "plan", "--parking", "3,1,2,1,3,2")
	require.NoError(t, err)
	env := decode[PlanResult](t, out)
	assert.Equal(t, "", env.Data.Decisions)
	assert.Equal(t, 0, env.Data.Ambiguities)
	assert.Equal(t, 10, env.Data.MoveCount)
}

func TestPlanTiePrefersLeft(t *testing.T) {
	out, err := execute(t, "--format", "json", "plan", "--parking", "2,1,2")
	require.NoError(t, err)
	env := decode[PlanResult](t, out)
	assert.Equal(t, "L", env.Data.Decisions)
	assert.Equal(t, 4, env.Data.MoveCount)
}

func TestPlanDigestDependsOnDecisions(t *testing.T) {
	left, err := execute(t, "--format", "json", "plan", "--parking", "2,1,3,1,2", "--decisions", "L")
	require.NoError(t, err)
	right, err := execute(t, "--format", "json", "plan", "--parking", "2,1,3,1,2", "--decisions", "R")
	require.NoError(t, err)
	assert.NotEqual(t, decode[PlanResult](t, left).Data.PlanDigest, decode[PlanResult](t, right).Data.PlanDigest)
}

func TestPlanFromYardFile(t *testing.T) {
	out, err := execute(t, "--format", "json", "plan", "--file", yardsDir, "--yard", "split")
	require.NoError(t, err)
	env := decode[PlanResult](t, out)
	assert.Equal(t, "static", env.Data.Oracle)
	assert.Equal(t, "R", env.Data.Decisions)
	assert.Equal(t, 8, env.Data.MoveCount)
}

func TestPlanErrors(t *testing.T) {
	out, err := execute(t, "plan", "--parking", "2,1", "--oracle", "search", "--decisions", "L")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "cannot be combined")

	out, err = execute(t, "plan", "--parking", "2,1", "--decisions", "Q")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [MALFORMED_DECISIONS]")
}
