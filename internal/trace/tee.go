package trace

import (
	"fmt"

	"github.com/syn-ce/os/internal/engine"
	"github.com/syn-ce/os/internal/ir"
)

// Tee forwards every move to each recorder in order.
// The first failing recorder stops the fan-out and its error is returned.
type Tee []engine.Recorder

// Record implements engine.Recorder.
func (t Tee) Record(m ir.Move) error {
	for i, r := range t {
		if r == nil {
			continue
		}
		if err := r.Record(m); err != nil {
			return fmt.Errorf("recorder %d: %w", i, err)
		}
	}
	return nil
}
