package oracle

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/syn-ce/os/internal/engine"
	"github.com/syn-ce/os/internal/ir"
	"github.com/syn-ce/os/internal/rail"
)

// Search finds the decision sequence with the fewest total moves.
//
// Every ambiguous target branches into LEFT and RIGHT. Branches run on
// cloned switchers, so move counts come from the real drain logic. States
// are memoized by next target and source rail contents; equal states need
// equal moves from there on. Ties prefer LEFT.
type Search struct {
	Logger *slog.Logger
}

var _ engine.Oracle = Search{}

// plan is the best continuation from one state.
type plan struct {
	moves     int
	decisions ir.DecisionSequence
}

// Plan implements engine.Oracle.
func (s Search) Plan(parking []ir.Wagon) (ir.DecisionSequence, error) {
	sw, err := engine.New(rail.NewYard(parking), nil)
	if err != nil {
		return nil, err
	}

	memo := make(map[string]plan)
	best, err := s.search(sw, memo)
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Debug("search complete",
			"wagons", len(parking),
			"moves", best.moves,
			"decisions", best.decisions.String(),
			"states", len(memo),
		)
	}
	return best.decisions, nil
}

// Best returns the minimal plan together with its move count.
func (s Search) Best(parking []ir.Wagon) (ir.DecisionSequence, int, error) {
	seq, err := s.Plan(parking)
	if err != nil {
		return nil, 0, err
	}
	n, err := Evaluate(parking, seq)
	if err != nil {
		return nil, 0, err
	}
	return seq, n, nil
}

func (s Search) search(sw *engine.Switcher, memo map[string]plan) (plan, error) {
	v, ok := sw.NextTarget()
	if !ok {
		return plan{decisions: ir.DecisionSequence{}}, nil
	}

	key := fmt.Sprintf("%d#%s", v, sw.StateKey())
	if p, hit := memo[key]; hit {
		return p, nil
	}

	var result plan
	if !sw.Ambiguous(v) {
		p, err := s.step(sw, ir.Left, memo)
		if err != nil {
			return plan{}, err
		}
		result = p
	} else {
		left, err := s.step(sw, ir.Left, memo)
		if err != nil {
			return plan{}, err
		}
		right, err := s.step(sw, ir.Right, memo)
		if err != nil {
			return plan{}, err
		}

		result = plan{moves: left.moves, decisions: prepend(ir.Left, left.decisions)}
		if right.moves < left.moves {
			result = plan{moves: right.moves, decisions: prepend(ir.Right, right.decisions)}
		}
	}

	memo[key] = result
	return result, nil
}

// step places the next target on a clone with d and searches onward.
func (s Search) step(sw *engine.Switcher, d ir.Decision, memo map[string]plan) (plan, error) {
	c := sw.Clone()
	before := c.MoveCount()
	if _, _, err := c.PlaceNext(d); err != nil {
		return plan{}, err
	}
	rest, err := s.search(c, memo)
	if err != nil {
		return plan{}, err
	}
	return plan{moves: c.MoveCount() - before + rest.moves, decisions: rest.decisions}, nil
}

func prepend(d ir.Decision, seq ir.DecisionSequence) ir.DecisionSequence {
	return slices.Insert(slices.Clone(seq), 0, d)
}

// Evaluate returns the number of moves a full sort of parking takes with
// decisions.
func Evaluate(parking []ir.Wagon, decisions ir.DecisionSequence) (int, error) {
	sw, err := engine.New(rail.NewYard(parking), nil)
	if err != nil {
		return 0, err
	}
	return sw.Shunt(decisions)
}
