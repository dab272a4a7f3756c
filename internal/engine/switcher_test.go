package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syn-ce/os/internal/ir"
	"github.com/syn-ce/os/internal/rail"
)

// moveLog is a test-only recorder that keeps every move.
type moveLog struct {
	moves []ir.Move
}

func (l *moveLog) Record(m ir.Move) error {
	l.moves = append(l.moves, m)
	return nil
}

// failingRecorder rejects the n-th move (1-based).
type failingRecorder struct {
	n, seen int
}

func (f *failingRecorder) Record(ir.Move) error {
	f.seen++
	if f.seen == f.n {
		return errors.New("disk full")
	}
	return nil
}

func newSwitcher(t *testing.T, parking []ir.Wagon, opts ...Option) (*Switcher, *rail.Yard) {
	t.Helper()
	y := rail.NewYard(parking)
	s, err := New(y, nil, opts...)
	require.NoError(t, err)
	return s, y
}

func railValues(t *testing.T, y *rail.Yard, name ir.RailName) []ir.Wagon {
	t.Helper()
	r, err := y.Lookup(name)
	require.NoError(t, err)
	return r.Values()
}

func TestShunt_ExampleWithoutAmbiguity(t *testing.T) {
	log := &moveLog{}
	s, y := newSwitcher(t, []ir.Wagon{3, 1, 2, 1, 3, 2}, WithRecorder(log))

	n, err := s.Shunt(nil)
	require.NoError(t, err)

	assert.Equal(t, 10, n)
	assert.Len(t, log.moves, 10)
	assert.Equal(t, 0, s.DecisionsUsed())
	assert.Equal(t, 0, s.Ambiguities())
	assert.Equal(t, []ir.Wagon{1, 1, 2, 2, 3, 3}, railValues(t, y, ir.Main))
	assert.Empty(t, railValues(t, y, ir.Parking))
	assert.Empty(t, railValues(t, y, ir.Siding))
}

func TestShunt_TwoWagons(t *testing.T) {
	s, y := newSwitcher(t, []ir.Wagon{2, 1})

	n, err := s.Shunt(ir.DecisionSequence{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []ir.Wagon{1, 2}, railValues(t, y, ir.Main))
}

func TestShunt_EmptyParking(t *testing.T) {
	s, y := newSwitcher(t, nil)

	n, err := s.Shunt(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, railValues(t, y, ir.Main))
}

func TestShunt_FirstMoveSnapshots(t *testing.T) {
	log := &moveLog{}
	s, _ := newSwitcher(t, []ir.Wagon{3, 1, 2, 1, 3, 2}, WithRecorder(log))

	_, err := s.Shunt(nil)
	require.NoError(t, err)

	// The 2 on top blocks the nearest 1 and goes to the siding first.
	want := ir.Move{
		Wagon:   2,
		From:    ir.Parking,
		To:      ir.Siding,
		Main:    []ir.Wagon{},
		Siding:  []ir.Wagon{2},
		Parking: []ir.Wagon{3, 1, 2, 1, 3},
	}
	if diff := cmp.Diff(want, log.moves[0]); diff != "" {
		t.Errorf("first move mismatch (-want +got):\n%s", diff)
	}

	last := log.moves[len(log.moves)-1]
	assert.Equal(t, ir.Main, last.To)
	assert.Equal(t, []ir.Wagon{3, 3, 2, 2, 1, 1}, last.Main, "main snapshot lists accessible end first")
}

func TestShunt_DecisionChangesCostNotResult(t *testing.T) {
	parking := []ir.Wagon{2, 1, 3, 1, 2}

	leftLog := &moveLog{}
	left, leftYard := newSwitcher(t, parking, WithRecorder(leftLog))
	nLeft, err := left.Shunt(ir.DecisionSequence{ir.Left})
	require.NoError(t, err)

	rightLog := &moveLog{}
	right, rightYard := newSwitcher(t, parking, WithRecorder(rightLog))
	nRight, err := right.Shunt(ir.DecisionSequence{ir.Right})
	require.NoError(t, err)

	assert.Equal(t, 9, nLeft)
	assert.Equal(t, 8, nRight)
	assert.Equal(t, 1, left.DecisionsUsed())
	assert.Equal(t, 1, right.DecisionsUsed())
	assert.Equal(t, railValues(t, leftYard, ir.Main), railValues(t, rightYard, ir.Main))
	assert.Equal(t, []ir.Wagon{1, 1, 2, 2, 3}, railValues(t, rightYard, ir.Main))
	assert.NotEqual(t, leftLog.moves, rightLog.moves)
}

func TestShunt_LeftDrainsSidingFirst(t *testing.T) {
	log := &moveLog{}
	s, _ := newSwitcher(t, []ir.Wagon{2, 1, 3, 1, 2}, WithRecorder(log))

	_, err := s.Shunt(ir.DecisionSequence{ir.Left})
	require.NoError(t, err)

	// Moves 1-4 place the ones; move 5 is the first of the ambiguous step.
	assert.Equal(t, ir.Siding, log.moves[4].From)
	assert.Equal(t, ir.Parking, log.moves[4].To)
	assert.Equal(t, ir.Wagon(3), log.moves[4].Wagon)
}

func TestShunt_RightDrainsParkingFirst(t *testing.T) {
	log := &moveLog{}
	s, _ := newSwitcher(t, []ir.Wagon{2, 1, 3, 1, 2}, WithRecorder(log))

	_, err := s.Shunt(ir.DecisionSequence{ir.Right})
	require.NoError(t, err)

	assert.Equal(t, ir.Parking, log.moves[4].From)
	assert.Equal(t, ir.Main, log.moves[4].To)
	assert.Equal(t, ir.Wagon(2), log.moves[4].Wagon)
}

func TestShunt_DefaultMatchesExplicitLeft(t *testing.T) {
	// The last distinct value ends up split across both source rails.
	parking := []ir.Wagon{2, 1, 2}

	defLog := &moveLog{}
	def, _ := newSwitcher(t, parking, WithRecorder(defLog))
	nDef, err := def.Shunt(nil)
	require.NoError(t, err)

	leftLog := &moveLog{}
	left, _ := newSwitcher(t, parking, WithRecorder(leftLog))
	nLeft, err := left.Shunt(ir.DecisionSequence{ir.Left})
	require.NoError(t, err)

	assert.Equal(t, nLeft, nDef)
	assert.Equal(t, 4, nDef)
	assert.Equal(t, leftLog.moves, defLog.moves)
	assert.Equal(t, 0, def.DecisionsUsed())
	assert.Equal(t, 1, def.Ambiguities())
	assert.Equal(t, 1, left.DecisionsUsed())
}

func TestShunt_ExtraTokensAreIgnored(t *testing.T) {
	s, _ := newSwitcher(t, []ir.Wagon{2, 1})

	n, err := s.Shunt(ir.DecisionSequence{ir.Right, ir.Right})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, s.DecisionsUsed())
}

func TestShunt_MalformedTokenAbortsBeforeMoving(t *testing.T) {
	log := &moveLog{}
	s, y := newSwitcher(t, []ir.Wagon{2, 1, 3, 1, 2}, WithRecorder(log))

	_, err := s.Shunt(ir.DecisionSequence{ir.Left, ir.Decision("X")})
	require.Error(t, err)

	assert.Equal(t, ErrCodeMalformedDecisions, CodeOf(err))
	assert.True(t, IsMalformedDecisionError(err))
	assert.Empty(t, log.moves)
	assert.Empty(t, railValues(t, y, ir.Main))
}

func TestNew_InvalidTargets(t *testing.T) {
	y := rail.NewYard([]ir.Wagon{3, 1, 2})

	_, err := New(y, []ir.Wagon{1, 2})
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidTargets, CodeOf(err))

	_, err = New(y, []ir.Wagon{3, 2, 1})
	assert.Equal(t, ErrCodeInvalidTargets, CodeOf(err))

	s, err := New(y, []ir.Wagon{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []ir.Wagon{1, 2, 3}, s.Targets())
}

func TestNew_UnknownRail(t *testing.T) {
	y := rail.FromRails(rail.New(ir.Parking, 1), rail.New(ir.Main))

	_, err := New(y, nil)
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnknownRail, CodeOf(err))
	assert.True(t, IsUnknownRailError(err))
}

func TestShunt_RecorderFailureAborts(t *testing.T) {
	rec := &failingRecorder{n: 2}
	s, _ := newSwitcher(t, []ir.Wagon{3, 1, 2}, WithRecorder(rec))

	n, err := s.Shunt(nil)
	require.Error(t, err)
	assert.Equal(t, ErrCodeRecorderFailed, CodeOf(err))
	assert.Equal(t, 2, n)
	assert.Contains(t, err.Error(), "disk full")
}

func TestShunt_LogsOnlyAtDebug(t *testing.T) {
	var buf bytes.Buffer
	info := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	s, _ := newSwitcher(t, []ir.Wagon{2, 1, 3, 1, 2}, WithLogger(info))
	_, err := s.Shunt(ir.DecisionSequence{ir.Right})
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	debug := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, _ = newSwitcher(t, []ir.Wagon{2, 1, 3, 1, 2}, WithLogger(debug))
	_, err = s.Shunt(ir.DecisionSequence{ir.Right})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "shunt complete")
	assert.Contains(t, buf.String(), "moves=8")
}

func TestNew_DefaultLoggerDiscards(t *testing.T) {
	s, _ := newSwitcher(t, []ir.Wagon{2, 1})
	assert.False(t, s.logger.Enabled(context.Background(), slog.LevelError))
	assert.False(t, s.Clone().logger.Enabled(context.Background(), slog.LevelError))
}

func TestShunt_OrderViolationOnPreloadedMain(t *testing.T) {
	y := rail.FromRails(rail.New(ir.Parking, 1), rail.New(ir.Siding), rail.New(ir.Main, 5))
	s, err := New(y, nil)
	require.NoError(t, err)

	_, err = s.Shunt(nil)
	require.Error(t, err)
	assert.Equal(t, ErrCodeOrderViolation, CodeOf(err))
	assert.Equal(t, []ir.Wagon{1}, railValues(t, y, ir.Parking), "rejected wagon stays on its rail")
}

func TestWrapRailError_Classifies(t *testing.T) {
	empty := wrapRailError(3, &rail.EmptyRailError{Rail: ir.Siding, Op: "pop"})
	assert.Equal(t, ErrCodeEmptyRail, empty.Code)
	assert.True(t, IsEmptyRailError(empty))

	unknown := wrapRailError(3, &rail.UnknownRailError{Name: "hump"})
	assert.Equal(t, ErrCodeUnknownRail, unknown.Code)
}

func TestPlaceNext_StepByStep(t *testing.T) {
	s, y := newSwitcher(t, []ir.Wagon{2, 1, 3, 1, 2})

	v, ambiguous, err := s.PlaceNext(ir.Left)
	require.NoError(t, err)
	assert.Equal(t, ir.Wagon(1), v)
	assert.False(t, ambiguous)

	next, ok := s.NextTarget()
	require.True(t, ok)
	assert.Equal(t, ir.Wagon(2), next)
	assert.True(t, s.Ambiguous(2))

	v, ambiguous, err = s.PlaceNext(ir.Right)
	require.NoError(t, err)
	assert.Equal(t, ir.Wagon(2), v)
	assert.True(t, ambiguous)

	_, _, err = s.PlaceNext(ir.Left)
	require.NoError(t, err)
	assert.True(t, s.Done())
	assert.Equal(t, 8, s.MoveCount())
	assert.Equal(t, []ir.Wagon{1, 1, 2, 2, 3}, railValues(t, y, ir.Main))

	_, _, err = s.PlaceNext(ir.Left)
	assert.Equal(t, ErrCodeIncompleteSort, CodeOf(err))
}

func TestClone_IsIndependent(t *testing.T) {
	log := &moveLog{}
	s, y := newSwitcher(t, []ir.Wagon{2, 1, 3, 1, 2}, WithRecorder(log))
	_, _, err := s.PlaceNext(ir.Left)
	require.NoError(t, err)

	c := s.Clone()
	assert.Equal(t, s.StateKey(), c.StateKey())

	_, _, err = c.PlaceNext(ir.Right)
	require.NoError(t, err)

	assert.Len(t, log.moves, 4, "clone must not report to the original recorder")
	assert.NotEqual(t, s.StateKey(), c.StateKey())
	assert.Equal(t, []ir.Wagon{1, 1}, railValues(t, y, ir.Main))
	assert.Equal(t, []ir.Wagon{1, 1, 2, 2}, c.Main())
}

func TestShunt_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		size := rng.Intn(10)
		parking := make([]ir.Wagon, size)
		for j := range parking {
			parking[j] = ir.Wagon(rng.Intn(5))
		}
		decisions := make(ir.DecisionSequence, rng.Intn(4))
		for j := range decisions {
			if rng.Intn(2) == 0 {
				decisions[j] = ir.Left
			} else {
				decisions[j] = ir.Right
			}
		}

		first, n1, err := Execute(parking, decisions)
		require.NoError(t, err, "parking=%v decisions=%s", parking, decisions)
		second, n2, err := Execute(parking, decisions)
		require.NoError(t, err)

		// Determinism
		assert.Equal(t, n1, n2)
		assert.Equal(t, first, second)

		var main []ir.Wagon
		if len(first) > 0 {
			last := first[len(first)-1]
			assert.Empty(t, last.Parking, "parking=%v", parking)
			assert.Empty(t, last.Siding, "parking=%v", parking)
			for k := len(last.Main) - 1; k >= 0; k-- {
				main = append(main, last.Main[k])
			}
		}
		// Conservation and sortedness
		assert.True(t, ir.SameMultiset(parking, main), "parking=%v main=%v", parking, main)
		assert.True(t, ir.IsNonDecreasing(main), "main=%v", main)

		// Every record increases seq by one.
		for k, rec := range first {
			assert.Equal(t, int64(k+1), rec.Seq)
		}
	}
}
