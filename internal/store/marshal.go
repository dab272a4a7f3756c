package store

import (
	"encoding/json"
	"fmt"

	"github.com/syn-ce/os/internal/ir"
)

// marshalWagons converts a wagon list to canonical JSON TEXT for storage.
// nil is stored as [].
func marshalWagons(ws []ir.Wagon) (string, error) {
	data, err := ir.MarshalCanonical(ws)
	if err != nil {
		return "", fmt.Errorf("marshal wagons: %w", err)
	}
	return string(data), nil
}

// marshalDecisions stores tokens as supplied, including malformed ones, so
// a failed run can be replayed into the same failure.
func marshalDecisions(seq ir.DecisionSequence) (string, error) {
	data, err := ir.MarshalCanonical(seq)
	if err != nil {
		return "", fmt.Errorf("marshal decisions: %w", err)
	}
	return string(data), nil
}

// unmarshalWagons parses JSON TEXT to a wagon list. Never returns nil.
func unmarshalWagons(data string) ([]ir.Wagon, error) {
	if data == "" || data == "[]" {
		return []ir.Wagon{}, nil
	}
	var ws []ir.Wagon
	if err := json.Unmarshal([]byte(data), &ws); err != nil {
		return nil, fmt.Errorf("unmarshal wagons: %w", err)
	}
	if ws == nil {
		ws = []ir.Wagon{}
	}
	return ws, nil
}

// unmarshalDecisions parses JSON TEXT to a decision sequence without
// validating tokens.
func unmarshalDecisions(data string) (ir.DecisionSequence, error) {
	if data == "" || data == "[]" {
		return ir.DecisionSequence{}, nil
	}
	var tokens []string
	if err := json.Unmarshal([]byte(data), &tokens); err != nil {
		return nil, fmt.Errorf("unmarshal decisions: %w", err)
	}
	seq := make(ir.DecisionSequence, len(tokens))
	for i, tok := range tokens {
		seq[i] = ir.Decision(tok)
	}
	return seq, nil
}
