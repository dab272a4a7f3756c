package testutil

import (
	"errors"
	"sync"

	"github.com/syn-ce/os/internal/ir"
)

// ErrInjected is returned by FailingRecorder.
var ErrInjected = errors.New("injected recorder failure")

// FailingRecorder accepts moves until the FailAt-th (1-based), which it
// rejects with ErrInjected. FailAt <= 0 never fails.
type FailingRecorder struct {
	FailAt int

	mu    sync.Mutex
	moves []ir.Move
}

// Record implements engine.Recorder.
func (r *FailingRecorder) Record(m ir.Move) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAt > 0 && len(r.moves)+1 == r.FailAt {
		return ErrInjected
	}
	r.moves = append(r.moves, m)
	return nil
}

// Moves returns the accepted moves.
func (r *FailingRecorder) Moves() []ir.Move {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ir.Move(nil), r.moves...)
}
