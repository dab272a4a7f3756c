package engine

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/syn-ce/os/internal/ir"
	"github.com/syn-ce/os/internal/rail"
)

// Replay and determinism
//
// A stored run carries everything needed to execute it again: the initial
// parking contents and the decision sequence. Because the switcher is
// deterministic, executing the same inputs must reproduce the stored move
// trace record by record. Replay does exactly that, in memory, and reports
// the first divergence if any.
//
// Replay never writes. Callers that want to persist the verification result
// do so themselves.
//
// A run that failed with RECORDER_FAILED stopped at the move its store
// rejected, while the in-memory replay goes on to finish the sort. Such runs
// are compared up to the stored move count only, and their stored digest,
// which was taken from the in-memory log, is not checked.

// ReplayResult is the outcome of replaying a stored run.
type ReplayResult struct {
	RunID         string      `json:"run_id"`
	Deterministic bool        `json:"deterministic"`
	MoveCount     int         `json:"move_count"`
	StoredMoves   int         `json:"stored_moves"`
	Digest        string      `json:"digest"`
	StoredDigest  string      `json:"stored_digest,omitempty"`
	Divergence    *Divergence `json:"divergence,omitempty"`
	// Truncated is set when the replay was cut to the stored moves of a
	// run whose recorder failed.
	Truncated bool `json:"truncated,omitempty"`
}

// Divergence describes the first record where replay and storage disagree.
type Divergence struct {
	Seq      int64            `json:"seq"`
	Expected *ir.ActionRecord `json:"expected,omitempty"`
	Actual   *ir.ActionRecord `json:"actual,omitempty"`
}

// collector is a minimal in-memory recorder for replay.
type collector struct {
	clock   *Clock
	records []ir.ActionRecord
}

func (c *collector) Record(m ir.Move) error {
	c.records = append(c.records, ir.ActionRecord{Seq: c.clock.Next(), Move: m})
	return nil
}

// Execute runs a full sort of parking with decisions in memory and returns
// the recorded trace together with the move count.
func Execute(parking []ir.Wagon, decisions ir.DecisionSequence, opts ...Option) ([]ir.ActionRecord, int, error) {
	c := &collector{clock: NewClock()}
	opts = append(opts, WithRecorder(c))
	s, err := New(rail.NewYard(parking), nil, opts...)
	if err != nil {
		return nil, 0, err
	}
	n, err := s.Shunt(decisions)
	return c.records, n, err
}

// Replay re-executes run and compares the result against stored.
// An error is returned only when the run cannot be executed at all.
func Replay(run ir.Run, stored []ir.ActionRecord) (*ReplayResult, error) {
	records, n, err := Execute(run.Parking, run.Decisions)
	if err != nil && run.Status != ir.RunFailed {
		return nil, fmt.Errorf("replay run %s: %w", run.ID, err)
	}

	truncated := recorderFailed(run) && len(records) > len(stored)
	if truncated {
		records = records[:len(stored)]
		n = len(stored)
	}

	digest, err := ir.TraceDigest(records)
	if err != nil {
		return nil, fmt.Errorf("replay run %s: %w", run.ID, err)
	}

	result := &ReplayResult{
		RunID:         run.ID,
		MoveCount:     n,
		StoredMoves:   len(stored),
		Digest:        digest,
		StoredDigest:  run.Digest,
		Deterministic: true,
		Truncated:     truncated,
	}

	result.Divergence = firstDivergence(stored, records)
	if result.Divergence != nil {
		result.Deterministic = false
	}
	if !truncated && run.Digest != "" && run.Digest != digest {
		result.Deterministic = false
	}
	return result, nil
}

// recorderFailed reports whether run failed because its recorder rejected a
// move.
func recorderFailed(run ir.Run) bool {
	return run.Status == ir.RunFailed && strings.HasPrefix(run.Error, string(ErrCodeRecorderFailed))
}

func firstDivergence(expected, actual []ir.ActionRecord) *Divergence {
	n := max(len(expected), len(actual))
	for i := 0; i < n; i++ {
		var e, a *ir.ActionRecord
		if i < len(expected) {
			e = &expected[i]
		}
		if i < len(actual) {
			a = &actual[i]
		}
		if e != nil && a != nil && reflect.DeepEqual(normalize(*e), normalize(*a)) {
			continue
		}
		seq := int64(i + 1)
		if e != nil {
			seq = e.Seq
		}
		return &Divergence{Seq: seq, Expected: e, Actual: a}
	}
	return nil
}

// normalize replaces nil snapshots with empty ones so records read back
// from storage compare equal to freshly recorded ones.
func normalize(r ir.ActionRecord) ir.ActionRecord {
	if r.Main == nil {
		r.Main = []ir.Wagon{}
	}
	if r.Siding == nil {
		r.Siding = []ir.Wagon{}
	}
	if r.Parking == nil {
		r.Parking = []ir.Wagon{}
	}
	return r
}
