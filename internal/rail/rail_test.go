package rail

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syn-ce/os/internal/ir"
)

func TestRail_PushPop(t *testing.T) {
	r := New(ir.Siding)
	r.Push(1)
	r.Push(2)

	w, err := r.Pop()
	require.NoError(t, err)
	assert.Equal(t, ir.Wagon(2), w)

	w, err = r.Pop()
	require.NoError(t, err)
	assert.Equal(t, ir.Wagon(1), w)
	assert.Equal(t, 0, r.Len())
}

func TestRail_PopEmpty(t *testing.T) {
	r := New(ir.Parking)

	_, err := r.Pop()
	require.Error(t, err)

	var ere *EmptyRailError
	require.True(t, errors.As(err, &ere))
	assert.Equal(t, ir.Parking, ere.Rail)
}

func TestRail_NextValue(t *testing.T) {
	r := New(ir.Parking, 3, 1, 2)

	w, err := r.NextValue()
	require.NoError(t, err)
	assert.Equal(t, ir.Wagon(2), w)
	assert.Equal(t, 3, r.Len(), "NextValue must not mutate")

	_, err = New(ir.Main).NextValue()
	var ere *EmptyRailError
	assert.True(t, errors.As(err, &ere))
}

func TestRail_SmallestPositionOf(t *testing.T) {
	// Accessible end is the rightmost element.
	r := New(ir.Parking, 3, 1, 2, 1, 3, 2)

	tests := []struct {
		value ir.Wagon
		pos   int
		ok    bool
	}{
		{2, 0, true},
		{3, 1, true},
		{1, 2, true},
		{9, 0, false},
	}
	for _, tt := range tests {
		pos, ok := r.SmallestPositionOf(tt.value)
		assert.Equal(t, tt.ok, ok, "value %d", tt.value)
		if tt.ok {
			assert.Equal(t, tt.pos, pos, "value %d", tt.value)
		}
	}
	assert.Equal(t, 6, r.Len())
}

func TestRail_SnapshotAndValues(t *testing.T) {
	r := New(ir.Main, 1, 2, 3)

	assert.Equal(t, []ir.Wagon{3, 2, 1}, r.Snapshot())
	assert.Equal(t, []ir.Wagon{1, 2, 3}, r.Values())

	snap := r.Snapshot()
	snap[0] = 99
	assert.Equal(t, []ir.Wagon{3, 2, 1}, r.Snapshot(), "snapshot must be a copy")

	assert.Equal(t, []ir.Wagon{}, New(ir.Main).Snapshot())
	assert.Equal(t, []ir.Wagon{}, New(ir.Main).Values())
}

func TestRail_NewCopiesInput(t *testing.T) {
	in := []ir.Wagon{1, 2}
	r := New(ir.Parking, in...)
	in[0] = 9
	assert.Equal(t, []ir.Wagon{1, 2}, r.Values())
}

func TestRail_CloneAndKey(t *testing.T) {
	r := New(ir.Siding, 4, -1, 2)
	c := r.Clone()
	c.Push(7)

	assert.Equal(t, "4,-1,2", r.Key())
	assert.Equal(t, "4,-1,2,7", c.Key())
	assert.Equal(t, ir.Siding, c.Name())
	assert.Equal(t, "", New(ir.Siding).Key())
}
