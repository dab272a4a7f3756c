package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syn-ce/os/internal/engine"
	"github.com/syn-ce/os/internal/ir"
	"github.com/syn-ce/os/internal/rail"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	yardFlags
}

// PlanResult is a decision plan with its cost.
type PlanResult struct {
	Name        string     `json:"name"`
	Parking     []ir.Wagon `json:"parking"`
	Oracle      string     `json:"oracle"`
	Decisions   string     `json:"decisions"`
	Ambiguities int        `json:"ambiguities"`
	MoveCount   int        `json:"move_count"`
	PlanDigest  string     `json:"plan_digest"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the decision plan for a yard and its move count",
		Long: `Ask the decision oracle for a plan without moving any wagon.

Without decisions the search oracle computes the plan with the fewest
moves. With --decisions (or a yard that lists decisions) the given plan
is evaluated instead.

Examples:
  yard plan --parking 2,1,3,1,2
  yard plan --parking 2,1,3,1,2 --decisions L
  yard plan --file ./yards --yard split --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, cmd)
		},
	}

	opts.yardFlags.register(cmd, oracleAuto)

	return cmd
}

func runPlan(opts *PlanOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	spec, err := opts.resolve()
	if err != nil {
		var mde *ir.MalformedDecisionError
		if errors.As(err, &mde) {
			return outputCommandError(formatter, string(engine.ErrCodeMalformedDecisions), err)
		}
		return outputCommandError(formatter, loadErrorCode(err), err)
	}

	decisions, err := oracleFor(spec, opts.logger()).Plan(spec.Parking)
	if err != nil {
		code := ErrCodeGeneric
		if engine.IsMalformedDecisionError(err) {
			code = string(engine.ErrCodeMalformedDecisions)
		}
		return outputCommandError(formatter, code, err)
	}

	sw, err := engine.New(rail.NewYard(spec.Parking), nil)
	if err != nil {
		return outputCommandError(formatter, string(engine.CodeOf(err)), err)
	}
	n, err := sw.Shunt(decisions)
	if err != nil {
		return outputCommandError(formatter, string(engine.CodeOf(err)), err)
	}
	digest, err := ir.PlanDigest(spec.Parking, decisions)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err)
	}

	name := oracleStatic
	if spec.Search {
		name = oracleSearch
	}
	result := PlanResult{
		Name:        spec.Name,
		Parking:     spec.Parking,
		Oracle:      name,
		Decisions:   decisions.String(),
		Ambiguities: sw.Ambiguities(),
		MoveCount:   n,
		PlanDigest:  digest,
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	shown := result.Decisions
	if shown == "" {
		shown = "(none)"
	}
	fmt.Fprintf(w, "Plan for %s (%s oracle)\n", result.Name, result.Oracle)
	fmt.Fprintf(w, "  Decisions:   %s\n", shown)
	fmt.Fprintf(w, "  Ambiguities: %d\n", result.Ambiguities)
	fmt.Fprintf(w, "  Moves:       %d\n", result.MoveCount)
	formatter.VerboseLog("Plan digest: %s", result.PlanDigest)
	return nil
}
