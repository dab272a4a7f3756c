package compiler

import (
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/syn-ce/os/internal/ir"
)

// CompileYard parses a CUE value into a YardSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the yard struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`yard: small: { parking: [3, 1, 2] }`)
//	spec, err := CompileYard(v.LookupPath(cue.ParsePath("yard.small")))
//
// Decision tokens are normalized to L/R. Unknown tokens are kept verbatim
// so that Validate can report them and a sort fails the same way.
func CompileYard(v cue.Value) (*ir.YardSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.YardSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	descVal := v.LookupPath(cue.ParsePath("description"))
	if descVal.Exists() {
		desc, err := descVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Description = desc
	}

	parkingVal := v.LookupPath(cue.ParsePath("parking"))
	if !parkingVal.Exists() {
		return nil, &CompileError{
			Field:   "parking",
			Message: "parking is required",
			Pos:     v.Pos(),
		}
	}
	parking, err := parseWagons(parkingVal)
	if err != nil {
		return nil, err
	}
	spec.Parking = parking

	decVal := v.LookupPath(cue.ParsePath("decisions"))
	if decVal.Exists() {
		spec.Decisions, err = parseDecisions(decVal)
		if err != nil {
			return nil, err
		}
	}

	oracleVal := v.LookupPath(cue.ParsePath("oracle"))
	if oracleVal.Exists() {
		name, err := oracleVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		switch name {
		case "static":
		case "search":
			spec.Search = true
		default:
			return nil, &CompileError{
				Field:   "oracle",
				Message: fmt.Sprintf("unknown oracle %q (want static or search)", name),
				Pos:     oracleVal.Pos(),
			}
		}
	}

	return spec, nil
}

// CompileYards compiles every field of a `yard` struct, in declaration
// order.
func CompileYards(v cue.Value) ([]*ir.YardSpec, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var specs []*ir.YardSpec
	for iter.Next() {
		spec, err := CompileYard(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("yard %s: %w", iter.Selector().String(), err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// parseWagons reads a list of integers.
func parseWagons(v cue.Value) ([]ir.Wagon, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "parking",
			Message: "must be a list of integers",
			Pos:     v.Pos(),
		}
	}

	wagons := []ir.Wagon{}
	for iter.Next() {
		elem := iter.Value()
		if elem.IncompleteKind() != cue.IntKind {
			return nil, &CompileError{
				Field:   "parking",
				Message: fmt.Sprintf("wagon %s must be an integer, got %v", iter.Selector(), elem.IncompleteKind()),
				Pos:     elem.Pos(),
			}
		}
		n, err := elem.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		wagons = append(wagons, ir.Wagon(n))
	}
	return wagons, nil
}

// parseDecisions accepts a compact string ("LRL") or a list of tokens.
func parseDecisions(v cue.Value) (ir.DecisionSequence, error) {
	if s, err := v.String(); err == nil {
		seq, perr := ir.ParseDecisionString(s)
		if perr != nil {
			return nil, &CompileError{
				Field:   "decisions",
				Message: perr.Error(),
				Pos:     v.Pos(),
			}
		}
		return seq, nil
	}

	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "decisions",
			Message: "must be a string or a list of tokens",
			Pos:     v.Pos(),
		}
	}

	seq := ir.DecisionSequence{}
	for iter.Next() {
		tok, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "decisions",
				Message: fmt.Sprintf("token %s must be a string", iter.Selector()),
				Pos:     iter.Value().Pos(),
			}
		}
		d, perr := ir.ParseDecision(tok)
		if perr != nil {
			d = ir.Decision(strings.TrimSpace(tok))
		}
		seq = append(seq, d)
	}
	return seq, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

// LoadYardFile compiles every yard declared in a single CUE file.
// A file without a `yard` field yields no yards.
func LoadYardFile(path string) ([]*ir.YardSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read yard file: %w", err)
	}
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	yards := v.LookupPath(cue.ParsePath("yard"))
	if !yards.Exists() {
		return nil, nil
	}
	return CompileYards(yards)
}
