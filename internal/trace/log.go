package trace

import (
	"slices"
	"sync"

	"github.com/syn-ce/os/internal/engine"
	"github.com/syn-ce/os/internal/ir"
)

// Log is an append-only, in-memory move recorder.
// Sequence numbers come from a logical clock and start at 1.
type Log struct {
	mu      sync.Mutex
	clock   *engine.Clock
	records []ir.ActionRecord
}

var _ engine.Recorder = (*Log)(nil)

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{clock: engine.NewClock()}
}

// Record implements engine.Recorder.
func (l *Log) Record(m ir.Move) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, ir.ActionRecord{Seq: l.clock.Next(), Move: m})
	return nil
}

// Records returns a copy of the recorded moves in order.
func (l *Log) Records() []ir.ActionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.records)
}

// Len returns the number of recorded moves.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Digest returns the trace digest of the recorded moves.
func (l *Log) Digest() (string, error) {
	return ir.TraceDigest(l.Records())
}
