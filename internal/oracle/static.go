package oracle

import (
	"slices"

	"github.com/syn-ce/os/internal/engine"
	"github.com/syn-ce/os/internal/ir"
)

// Static is an oracle that always returns the same decisions.
type Static struct {
	Decisions ir.DecisionSequence
}

var _ engine.Oracle = Static{}

// NewStatic parses tokens (L, R, LEFT or RIGHT) into a Static oracle.
func NewStatic(tokens ...string) (Static, error) {
	seq, err := ir.ParseDecisions(tokens)
	if err != nil {
		return Static{}, err
	}
	return Static{Decisions: seq}, nil
}

// Plan returns a copy of the fixed decisions regardless of parking.
func (s Static) Plan([]ir.Wagon) (ir.DecisionSequence, error) {
	if err := s.Decisions.Validate(); err != nil {
		return nil, err
	}
	return slices.Clone(s.Decisions), nil
}
