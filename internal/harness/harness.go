package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/syn-ce/os/internal/engine"
	"github.com/syn-ce/os/internal/ir"
	"github.com/syn-ce/os/internal/oracle"
	"github.com/syn-ce/os/internal/rail"
	"github.com/syn-ce/os/internal/store"
	"github.com/syn-ce/os/internal/testutil"
	"github.com/syn-ce/os/internal/trace"
)

// Harness is the test execution engine.
// It runs scenarios with deterministic run IDs against a private store.
type Harness struct {
	store  *store.Store
	runIDs *testutil.SequentialRunIDs
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Resolve the yard (inline or from a CUE file) and the plan
// 3. Sort with the real switcher, recording to memory and the store
// 4. Check expectations, properties, replay and assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with an explicit logger for the switcher.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		runIDs: testutil.NewSequentialRunIDs("scenario-" + scenario.Name),
		logger: logger,
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	parking, decisions, err := h.resolvePlan(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.RunID = h.runIDs.Generate()
	result.Decisions = decisions

	run := ir.Run{
		ID:            result.RunID,
		Name:          scenario.Name,
		Parking:       parking,
		Targets:       ir.TargetValues(parking),
		Decisions:     decisions,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	if err := h.store.BeginRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}

	log := trace.NewLog()
	yard := rail.NewYard(parking)
	sw, err := engine.New(yard, nil,
		engine.WithRecorder(trace.Tee{log, h.store.Recorder(ctx, run.ID)}),
		engine.WithLogger(h.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up switcher: %w", err)
	}
	n, shuntErr := sw.Shunt(decisions)

	result.MoveCount = n
	result.DecisionsUsed = sw.DecisionsUsed()
	result.Trace = log.Records()
	for _, name := range yard.Names() {
		r, _ := yard.Lookup(name)
		result.Rails[name] = r.Values()
	}
	if result.Digest, err = log.Digest(); err != nil {
		return nil, err
	}

	out := store.Outcome{
		MoveCount:     n,
		DecisionsUsed: result.DecisionsUsed,
		Main:          result.Main(),
		Digest:        result.Digest,
	}
	if shuntErr != nil {
		result.ErrorCode = string(engine.CodeOf(shuntErr))
		err = h.store.FailRun(ctx, run.ID, out, shuntErr.Error())
	} else {
		err = h.store.CompleteRun(ctx, run.ID, out)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to finish run: %w", err)
	}

	checkExpect(scenario.Expect, result, shuntErr)
	if shuntErr == nil {
		for _, msg := range CheckProperties(parking, result) {
			result.AddError(msg)
		}
	}
	if err := h.checkReplay(ctx, run.ID, result); err != nil {
		return nil, err
	}

	actx := &AssertionContext{Store: h.store, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"moves", result.MoveCount,
		"pass", result.Pass,
	)
	return result, nil
}

// resolvePlan returns the initial parking and the decisions to hand to the
// switcher.
func (h *Harness) resolvePlan(scenario *Scenario) ([]ir.Wagon, ir.DecisionSequence, error) {
	parking := toWagons(scenario.Parking)
	decisions := lenientDecisions(scenario.Decisions)
	search := scenario.Oracle == OracleSearch

	if scenario.YardFile != "" {
		spec, err := loadYard(scenario.YardFile, scenario.Yard)
		if err != nil {
			return nil, nil, err
		}
		parking = spec.Parking
		decisions = spec.Decisions
		search = search || spec.Search
	}

	if search {
		seq, err := oracle.Search{Logger: h.logger}.Plan(parking)
		if err != nil {
			return nil, nil, fmt.Errorf("search oracle: %w", err)
		}
		decisions = seq
	}
	return parking, decisions, nil
}

// lenientDecisions normalizes known tokens and keeps unknown ones verbatim
// so the switcher reports them.
func lenientDecisions(tokens []string) ir.DecisionSequence {
	seq := make(ir.DecisionSequence, len(tokens))
	for i, tok := range tokens {
		d, err := ir.ParseDecision(tok)
		if err != nil {
			d = ir.Decision(strings.TrimSpace(tok))
		}
		seq[i] = d
	}
	return seq
}

// checkExpect compares the outcome with the expect clause.
func checkExpect(expect *Expect, result *Result, shuntErr error) {
	wantErr := ""
	if expect != nil {
		wantErr = expect.Error
	}
	switch {
	case wantErr == "" && shuntErr != nil:
		result.AddError(fmt.Sprintf("unexpected error: %v", shuntErr))
	case wantErr != "" && result.ErrorCode != wantErr:
		got := result.ErrorCode
		if got == "" {
			got = "success"
		}
		result.AddError(fmt.Sprintf("expected error %s, got %s", wantErr, got))
	}

	if expect == nil {
		return
	}
	if expect.Main != nil && !slices.Equal(result.Main(), toWagons(expect.Main)) {
		result.AddError(fmt.Sprintf("main: expected [%s], got [%s]",
			ir.FormatWagons(toWagons(expect.Main)), ir.FormatWagons(result.Main())))
	}
	if expect.Moves != nil && *expect.Moves != result.MoveCount {
		result.AddError(fmt.Sprintf("moves: expected %d, got %d", *expect.Moves, result.MoveCount))
	}
	if expect.DecisionsUsed != nil && *expect.DecisionsUsed != result.DecisionsUsed {
		result.AddError(fmt.Sprintf("decisions_used: expected %d, got %d", *expect.DecisionsUsed, result.DecisionsUsed))
	}
}

// checkReplay reads the run back from the store and replays it.
func (h *Harness) checkReplay(ctx context.Context, runID string, result *Result) error {
	run, err := h.store.ReadRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to read run: %w", err)
	}
	moves, err := h.store.ReadMoves(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to read moves: %w", err)
	}
	replay, err := engine.Replay(run, moves)
	if err != nil {
		result.AddError(fmt.Sprintf("replay: %v", err))
		return nil
	}
	if !replay.Deterministic {
		msg := "replay: stored trace does not reproduce"
		if replay.Divergence != nil {
			msg = fmt.Sprintf("%s (first divergence at seq %d)", msg, replay.Divergence.Seq)
		}
		result.AddError(msg)
	}
	return nil
}
