package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syn-ce/os/internal/engine"
	"github.com/syn-ce/os/internal/ir"
	"github.com/syn-ce/os/internal/oracle"
)

// yardFlags selects a yard either inline or from a CUE definition.
type yardFlags struct {
	Parking   string
	Decisions string
	Oracle    string
	File      string
	Yard      string
	Name      string
}

func (f *yardFlags) register(cmd *cobra.Command, defaultOracle string) {
	cmd.Flags().StringVar(&f.Parking, "parking", "", "wagons on the parking rail, far end first (e.g. 3,1,2)")
	cmd.Flags().StringVar(&f.Decisions, "decisions", "", "decision tokens, compact (LRL) or comma-separated (LEFT,RIGHT)")
	cmd.Flags().StringVar(&f.Oracle, "oracle", defaultOracle, "decision oracle (static|search, empty picks search when no decisions are given)")
	cmd.Flags().StringVarP(&f.File, "file", "f", "", "CUE file or directory with yard definitions")
	cmd.Flags().StringVar(&f.Yard, "yard", "", "yard name inside --file")
	cmd.Flags().StringVar(&f.Name, "name", "cli", "run name for inline yards")
}

// resolve builds the yard definition. Malformed decision tokens are
// reported as *ir.MalformedDecisionError.
func (f *yardFlags) resolve() (*ir.YardSpec, error) {
	switch f.Oracle {
	case oracleAuto, oracleStatic, oracleSearch:
	default:
		return nil, fmt.Errorf("invalid oracle %q: must be %s or %s", f.Oracle, oracleStatic, oracleSearch)
	}

	var spec *ir.YardSpec
	if f.File != "" {
		if f.Parking != "" || f.Decisions != "" {
			return nil, errors.New("--file cannot be combined with --parking or --decisions")
		}
		loaded, errs := LoadYards(f.File, LoadModeFailFast)
		if len(errs) > 0 {
			return nil, errs[0]
		}
		found, err := loaded.Find(f.Yard)
		if err != nil {
			return nil, err
		}
		copied := *found
		spec = &copied
	} else {
		if f.Parking == "" {
			return nil, errors.New("--parking or --file is required")
		}
		parking, err := ir.ParseWagons(f.Parking)
		if err != nil {
			return nil, fmt.Errorf("invalid --parking: %w", err)
		}
		decisions, err := ir.ParseDecisionString(f.Decisions)
		if err != nil {
			return nil, err
		}
		spec = &ir.YardSpec{Name: f.Name, Parking: parking, Decisions: decisions}
	}

	switch f.Oracle {
	case oracleSearch:
		if len(spec.Decisions) > 0 {
			return nil, errors.New("decisions cannot be combined with the search oracle")
		}
		spec.Search = true
	case oracleAuto:
		spec.Search = spec.Search || len(spec.Decisions) == 0
	}
	return spec, nil
}

const (
	oracleAuto   = "" // search unless decisions are given
	oracleStatic = "static"
	oracleSearch = "search"
)

// oracleFor returns the decision oracle a yard asks for.
func oracleFor(spec *ir.YardSpec, logger *slog.Logger) engine.Oracle {
	if spec.Search {
		return oracle.Search{Logger: logger}
	}
	return oracle.Static{Decisions: spec.Decisions}
}
