package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetValues(t *testing.T) {
	assert.Equal(t, []Wagon{1, 2, 3}, TargetValues([]Wagon{3, 1, 2, 1, 3, 2}))
	assert.Empty(t, TargetValues(nil))

	in := []Wagon{2, 1}
	_ = TargetValues(in)
	assert.Equal(t, []Wagon{2, 1}, in, "input must not be mutated")
}

func TestSameMultiset(t *testing.T) {
	assert.True(t, SameMultiset([]Wagon{1, 2, 2}, []Wagon{2, 1, 2}))
	assert.False(t, SameMultiset([]Wagon{1, 2, 2}, []Wagon{1, 1, 2}))
	assert.False(t, SameMultiset([]Wagon{1}, []Wagon{1, 1}))
}

func TestIsNonDecreasing(t *testing.T) {
	assert.True(t, IsNonDecreasing([]Wagon{1, 1, 2, 3}))
	assert.True(t, IsNonDecreasing(nil))
	assert.False(t, IsNonDecreasing([]Wagon{2, 1}))
}

func TestParseWagons(t *testing.T) {
	got, err := ParseWagons("3, 1,2,-4")
	require.NoError(t, err)
	assert.Equal(t, []Wagon{3, 1, 2, -4}, got)

	got, err = ParseWagons("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseWagons("1,x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wagon[1]")
}

func TestFormatWagons(t *testing.T) {
	assert.Equal(t, "3 1 2", FormatWagons([]Wagon{3, 1, 2}))
	assert.Equal(t, "", FormatWagons(nil))
}
