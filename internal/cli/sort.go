package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syn-ce/os/internal/engine"
	"github.com/syn-ce/os/internal/ir"
	"github.com/syn-ce/os/internal/oracle"
	"github.com/syn-ce/os/internal/rail"
	"github.com/syn-ce/os/internal/store"
	"github.com/syn-ce/os/internal/trace"
)

// SortOptions holds flags for the sort command.
type SortOptions struct {
	*RootOptions
	yardFlags
	Database string
	Print    bool
	Table    string
}

// SortResult is the outcome of one sort.
type SortResult struct {
	RunID         string            `json:"run_id,omitempty"`
	Name          string            `json:"name"`
	Parking       []ir.Wagon        `json:"parking"`
	Decisions     string            `json:"decisions"`
	MoveCount     int               `json:"move_count"`
	DecisionsUsed int               `json:"decisions_used"`
	Main          []ir.Wagon        `json:"main"`
	Digest        string            `json:"digest"`
	Moves         []ir.ActionRecord `json:"moves"`
}

// NewSortCommand creates the sort command.
func NewSortCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SortOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort a yard onto the main rail",
		Long: `Sort the wagons of one yard onto the main rail in ascending order.

The yard is given inline with --parking or loaded from a CUE definition
with --file and --yard. Decisions resolve the targets whose wagons sit on
both parking and siding; once they run out, LEFT (siding first) is used.
With --db (or YARD_DB) the run and every move are stored for trace and
replay.

Exit codes:
  0 - Sorted
  1 - The sort failed (malformed decisions, order violation, ...)
  2 - Command error (bad flags, unreadable files, database errors)

Examples:
  yard sort --parking 3,1,2,1,3,2
  yard sort --parking 2,1,3,1,2 --decisions R --print
  yard sort --parking 2,1,3,1,2 --oracle search --db ./yard.db
  yard sort --file ./yards --yard split --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(opts, cmd)
		},
	}

	opts.yardFlags.register(cmd, oracleStatic)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for the audit trail")
	cmd.Flags().BoolVar(&opts.Print, "print", false, "print the action table")
	cmd.Flags().StringVar(&opts.Table, "table", "", "action table style (ascii|markdown)")

	return cmd
}

func runSort(opts *SortOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()
	ctx := commandContext(cmd)

	mode, err := tableMode(opts.RootOptions, opts.Table)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err)
	}

	spec, err := opts.resolve()
	if err != nil {
		var mde *ir.MalformedDecisionError
		if errors.As(err, &mde) {
			_ = formatter.Error(string(engine.ErrCodeMalformedDecisions), err.Error(), nil)
			return WrapExitError(ExitFailure, "sort failed", err)
		}
		return outputCommandError(formatter, loadErrorCode(err), err)
	}

	decisions := spec.Decisions
	if spec.Search {
		decisions, err = oracle.Search{Logger: logger}.Plan(spec.Parking)
		if err != nil {
			return outputCommandError(formatter, ErrCodeGeneric, fmt.Errorf("search oracle: %w", err))
		}
		formatter.VerboseLog("Search oracle chose %q", decisions.String())
	}

	log := trace.NewLog()
	recorders := trace.Tee{log}

	var st *store.Store
	run := ir.Run{
		Name:          spec.Name,
		Parking:       spec.Parking,
		Targets:       ir.TargetValues(spec.Parking),
		Decisions:     decisions,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	if path := opts.database(opts.Database); path != "" {
		st, err = store.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		run.ID = opts.runIDs().Generate()
		if err := st.BeginRun(ctx, run); err != nil {
			return WrapExitError(ExitCommandError, "failed to begin run", err)
		}
		recorders = append(recorders, st.Recorder(ctx, run.ID))
	}

	sw, err := engine.New(rail.NewYard(spec.Parking), nil,
		engine.WithRecorder(recorders),
		engine.WithLogger(logger),
	)
	if err != nil {
		return outputCommandError(formatter, string(engine.CodeOf(err)), err)
	}

	logger.Info("sort started", "yard", spec.Name, "wagons", len(spec.Parking), "run_id", run.ID)
	n, shuntErr := sw.Shunt(decisions)

	digest, err := log.Digest()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to digest trace", err)
	}
	result := SortResult{
		RunID:         run.ID,
		Name:          spec.Name,
		Parking:       spec.Parking,
		Decisions:     decisions.String(),
		MoveCount:     n,
		DecisionsUsed: sw.DecisionsUsed(),
		Main:          sw.Main(),
		Digest:        digest,
		Moves:         log.Records(),
	}

	if st != nil {
		out := store.Outcome{
			MoveCount:     n,
			DecisionsUsed: result.DecisionsUsed,
			Main:          result.Main,
			Digest:        digest,
		}
		if shuntErr != nil {
			err = st.FailRun(ctx, run.ID, out, shuntErr.Error())
		} else {
			err = st.CompleteRun(ctx, run.ID, out)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to finish run", err)
		}
	}

	logger.Info("sort finished", "yard", spec.Name, "moves", n, "ok", shuntErr == nil)

	if shuntErr != nil {
		return outputSortFailure(formatter, result, shuntErr, opts.Print, mode)
	}
	return outputSortSuccess(formatter, result, opts.Print, mode)
}

func outputSortSuccess(formatter *OutputFormatter, result SortResult, printTable bool, mode trace.Mode) error {
	if formatter.IsJSON() {
		return formatter.Respond(CLIResponse{Status: "ok", Data: result, RunID: result.RunID})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Sorted %d wagon(s) in %d move(s)\n", len(result.Parking), result.MoveCount)
	writeSortDetails(formatter, result)
	if printTable {
		fmt.Fprintln(w)
		fmt.Fprintln(w, trace.Render(result.Moves, mode))
	}
	return nil
}

func outputSortFailure(formatter *OutputFormatter, result SortResult, shuntErr error, printTable bool, mode trace.Mode) error {
	code := string(engine.CodeOf(shuntErr))
	if formatter.IsJSON() {
		if err := formatter.Respond(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: code, Message: shuntErr.Error()},
			RunID:  result.RunID,
		}); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, "sort failed", shuntErr)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✗ Sort failed after %d move(s)\n", result.MoveCount)
	fmt.Fprintf(w, "  %s: %s\n", code, shuntErr.Error())
	writeSortDetails(formatter, result)
	if printTable && len(result.Moves) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, trace.Render(result.Moves, mode))
	}
	return WrapExitError(ExitFailure, "sort failed", shuntErr)
}

func writeSortDetails(formatter *OutputFormatter, result SortResult) {
	w := formatter.Writer
	decisions := result.Decisions
	if decisions == "" {
		decisions = "(none)"
	}
	fmt.Fprintf(w, "  Yard:      %s\n", result.Name)
	fmt.Fprintf(w, "  Decisions: %s (%d used)\n", decisions, result.DecisionsUsed)
	fmt.Fprintf(w, "  Main:      [%s]\n", ir.FormatWagons(result.Main))
	if result.RunID != "" {
		fmt.Fprintf(w, "  Run:       %s\n", result.RunID)
	}
	formatter.VerboseLog("Digest: %s", result.Digest)
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// tableMode resolves --table against YARD_TABLE.
func tableMode(opts *RootOptions, flag string) (trace.Mode, error) {
	if flag == "" {
		return opts.tableMode(), nil
	}
	return trace.ParseMode(flag)
}

// loadErrorCode returns the code of a *LoadError, or E001.
func loadErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}

// outputCommandError reports a command-level error (exit code 2).
func outputCommandError(formatter *OutputFormatter, code string, err error) error {
	if code == "" {
		code = ErrCodeGeneric
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}
