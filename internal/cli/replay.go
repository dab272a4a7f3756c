package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syn-ce/os/internal/engine"
	"github.com/syn-ce/os/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
	Filter   runFilterFlags
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string             `json:"run_id"`
	Name          string             `json:"name"`
	Status        string             `json:"status"`
	StoredMoves   int                `json:"stored_moves"`
	ReplayedMoves int                `json:"replayed_moves"`
	Deterministic bool               `json:"deterministic"`
	Divergence    *engine.Divergence `json:"divergence,omitempty"`
	Truncated     bool               `json:"truncated,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay stored runs and verify determinism",
		Long: `Re-execute stored runs in memory and compare them with the audit trail.

Each run is sorted again from its stored parking rail and decisions. The
replayed moves must match the stored moves one for one, and the trace
digest must match the stored digest.

Exit codes:
  0 - All runs are deterministic
  1 - At least one run diverged from its audit trail
  2 - Command error (database not found, etc.)

Examples:
  yard replay --db ./yard.db
  yard replay --db ./yard.db --run 0192f7a0-...
  yard replay --db ./yard.db --name split --status completed
  yard replay --db ./yard.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (or YARD_DB)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")
	opts.Filter.register(cmd)

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	filter, err := opts.Filter.resolve()
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err)
	}

	st, err := openDatabase(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	// Get run IDs to process
	var runIDs []string
	if opts.RunID != "" {
		runIDs = []string{opts.RunID}
	} else {
		runs, err := st.ListRunsWhere(ctx, filter.Predicate())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		for _, r := range runs {
			runIDs = append(runIDs, r.ID)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runIDs)),
		TotalRuns:        len(runIDs),
		AllDeterministic: true,
	}

	if len(runIDs) == 0 {
		if formatter.IsJSON() {
			return outputReplayJSON(formatter, result)
		}
		fmt.Fprintln(formatter.Writer, "No runs found in database.")
		return nil
	}

	for _, id := range runIDs {
		runResult, err := replayRun(ctx, st, id)
		if errors.Is(err, store.ErrRunNotFound) {
			return outputCommandError(formatter, ErrCodeNotFound, err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", id), err)
		}

		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if formatter.IsJSON() {
		return outputReplayJSON(formatter, result)
	}

	return outputReplayText(formatter, result, opts.Verbose)
}

// replayRun reads one run and its moves and replays it.
// A run that can no longer be executed counts as non-deterministic.
func replayRun(ctx context.Context, st *store.Store, runID string) (ReplayRunResult, error) {
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return ReplayRunResult{}, err
	}
	moves, err := st.ReadMoves(ctx, runID)
	if err != nil {
		return ReplayRunResult{}, err
	}

	out := ReplayRunResult{
		RunID:       run.ID,
		Name:        run.Name,
		Status:      string(run.Status),
		StoredMoves: len(moves),
	}

	replay, err := engine.Replay(run, moves)
	if err != nil {
		out.Error = err.Error()
		return out, nil
	}
	out.ReplayedMoves = replay.MoveCount
	out.Deterministic = replay.Deterministic
	out.Divergence = replay.Divergence
	out.Truncated = replay.Truncated
	return out, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}

	if err := formatter.Respond(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, result ReplayResult, verbose bool) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "✓"
		if !run.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Run: %s (%s, %s)\n", status, run.RunID, run.Name, run.Status)
		fmt.Fprintf(w, "  Moves: %d stored, %d replayed\n", run.StoredMoves, run.ReplayedMoves)

		if run.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", run.Error)
		}
		if run.Truncated {
			fmt.Fprintln(w, "  Note: compared up to the move the recorder rejected")
		}
		if d := run.Divergence; d != nil {
			fmt.Fprintf(w, "  Warning: first divergence at seq %d\n", d.Seq)
			if verbose {
				if d.Expected != nil {
					fmt.Fprintf(w, "    stored:   wagon %d %s -> %s\n", d.Expected.Wagon, d.Expected.From, d.Expected.To)
				}
				if d.Actual != nil {
					fmt.Fprintf(w, "    replayed: wagon %d %s -> %s\n", d.Actual.Wagon, d.Actual.From, d.Actual.To)
				}
			}
		} else if !run.Deterministic && run.Error == "" {
			fmt.Fprintln(w, "  Warning: trace digest differs from the stored digest")
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All runs verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
