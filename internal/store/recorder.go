package store

import (
	"context"

	"github.com/syn-ce/os/internal/engine"
	"github.com/syn-ce/os/internal/ir"
)

// Recorder returns an engine.Recorder that appends each move to runID.
// Sequence numbers start at 1. A write failure aborts the sort.
func (s *Store) Recorder(ctx context.Context, runID string) engine.Recorder {
	return &moveRecorder{store: s, ctx: ctx, runID: runID, clock: engine.NewClock()}
}

type moveRecorder struct {
	store *Store
	ctx   context.Context
	runID string
	clock *engine.Clock
}

func (r *moveRecorder) Record(m ir.Move) error {
	return r.store.WriteMove(r.ctx, r.runID, ir.ActionRecord{Seq: r.clock.Next(), Move: m})
}
