package cli

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/syn-ce/os/internal/ir"
	"github.com/syn-ce/os/internal/store"
	"github.com/syn-ce/os/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Wagon    int64 // optional - only moves of this wagon
	Table    string
	Filter   runFilterFlags
}

// TraceResult holds a stored run and its moves.
type TraceResult struct {
	Run     ir.Run            `json:"run"`
	Moves   []ir.ActionRecord `json:"moves"`
	Summary string            `json:"summary"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the stored moves of a run",
		Long: `Show the audit trail of a stored run as an action table.

Without --run, lists the stored runs, optionally narrowed with --name and
--status. With --wagon, only moves of that wagon value are shown.

Examples:
  yard trace --db ./yard.db
  yard trace --db ./yard.db --status failed
  yard trace --db ./yard.db --run 0192f7a0-...
  yard trace --db ./yard.db --run 0192f7a0-... --wagon 2 --table markdown
  yard trace --db ./yard.db --run 0192f7a0-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (or YARD_DB)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace")
	cmd.Flags().Int64Var(&opts.Wagon, "wagon", 0, "only show moves of this wagon value")
	cmd.Flags().StringVar(&opts.Table, "table", "", "action table style (ascii|markdown)")
	opts.Filter.register(cmd)

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	mode, err := tableMode(opts.RootOptions, opts.Table)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err)
	}
	filter, err := opts.Filter.resolve()
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err)
	}

	st, err := openDatabase(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.RunID == "" {
		runs, err := st.ListRunsWhere(ctx, filter.Predicate())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		return outputRunList(formatter, runs)
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		return outputCommandError(formatter, ErrCodeNotFound, err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	moves, err := st.ReadMoves(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read moves", err)
	}
	if cmd.Flags().Changed("wagon") {
		moves = filterWagon(moves, ir.Wagon(opts.Wagon))
	}

	result := TraceResult{Run: run, Moves: moves, Summary: trace.Summary(moves)}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (%s): %s\n", run.ID, run.Name, run.Status)
	fmt.Fprintf(w, "  Parking:   [%s]\n", ir.FormatWagons(run.Parking))
	fmt.Fprintf(w, "  Decisions: %s (%d used)\n", run.Decisions.String(), run.DecisionsUsed)
	if run.Error != "" {
		fmt.Fprintf(w, "  Error:     %s\n", run.Error)
	}
	fmt.Fprintln(w)
	if len(moves) > 0 {
		fmt.Fprintln(w, trace.Render(moves, mode))
	}
	fmt.Fprintln(w, result.Summary)
	return nil
}

// filterWagon keeps the moves of one wagon value.
func filterWagon(moves []ir.ActionRecord, w ir.Wagon) []ir.ActionRecord {
	out := []ir.ActionRecord{}
	for _, m := range moves {
		if m.Wagon == w {
			out = append(out, m)
		}
	}
	return out
}

func outputRunList(formatter *OutputFormatter, runs []ir.Run) error {
	if formatter.IsJSON() {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs found in database.")
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Name", "Status", "Moves", "Decisions", "Main"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.ID, r.Name, string(r.Status), r.MoveCount, r.Decisions.String(), ir.FormatWagons(r.Main)})
	}
	fmt.Fprintln(formatter.Writer, t.Render())
	return nil
}

// openDatabase opens the --db path, falling back to YARD_DB.
func openDatabase(opts *RootOptions, flag string) (*store.Store, error) {
	path := opts.database(flag)
	if path == "" {
		return nil, NewExitError(ExitCommandError, "--db is required (or set YARD_DB)")
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// runFilterFlags narrows run listings by name and status.
type runFilterFlags struct {
	Name   string
	Status string
}

func (f *runFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Name, "name", "", "only runs with this name")
	cmd.Flags().StringVar(&f.Status, "status", "", "only runs with this status (running|completed|failed)")
}

func (f *runFilterFlags) resolve() (store.RunFilter, error) {
	status := ir.RunStatus(f.Status)
	switch status {
	case "", ir.RunRunning, ir.RunCompleted, ir.RunFailed:
	default:
		return store.RunFilter{}, fmt.Errorf("invalid --status %q: must be running, completed or failed", f.Status)
	}
	return store.RunFilter{Name: f.Name, Status: status}, nil
}
