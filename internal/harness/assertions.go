package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/syn-ce/os/internal/ir"
	"github.com/syn-ce/os/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string            // Assertion type for categorization
	Expected string            // Human-readable expected outcome
	Actual   string            // Human-readable actual outcome
	Trace    []ir.ActionRecord // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, rec := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %d %s -> %s\n", rec.Seq, rec.Wagon, rec.From, rec.To)
		}
	}

	return buf.String()
}

// matches reports whether rec satisfies every set field of m.
func (m MoveMatch) matches(rec ir.ActionRecord) bool {
	if m.Wagon != nil && ir.Wagon(*m.Wagon) != rec.Wagon {
		return false
	}
	if m.From != "" && ir.RailName(m.From) != rec.From {
		return false
	}
	if m.To != "" && ir.RailName(m.To) != rec.To {
		return false
	}
	return true
}

func (m MoveMatch) String() string {
	wagon := "*"
	if m.Wagon != nil {
		wagon = fmt.Sprint(*m.Wagon)
	}
	from, to := m.From, m.To
	if from == "" {
		from = "*"
	}
	if to == "" {
		to = "*"
	}
	return fmt.Sprintf("wagon %s %s -> %s", wagon, from, to)
}

func assertMoveCount(result *Result, a Assertion) error {
	if result.MoveCount != a.Count {
		return &AssertionError{
			Type:     AssertMoveCount,
			Expected: fmt.Sprintf("%d moves", a.Count),
			Actual:   fmt.Sprintf("%d moves", result.MoveCount),
		}
	}
	return nil
}

func assertMaxMoves(result *Result, a Assertion) error {
	if result.MoveCount > a.Count {
		return &AssertionError{
			Type:     AssertMaxMoves,
			Expected: fmt.Sprintf("at most %d moves", a.Count),
			Actual:   fmt.Sprintf("%d moves", result.MoveCount),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertFinalRail(result *Result, a Assertion) error {
	got, ok := result.Rails[ir.RailName(a.Rail)]
	if !ok {
		return &AssertionError{
			Type:     AssertFinalRail,
			Expected: fmt.Sprintf("rail %s", a.Rail),
			Actual:   "no such rail",
		}
	}
	want := toWagons(a.Wagons)
	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     AssertFinalRail,
			Expected: fmt.Sprintf("%s = [%s]", a.Rail, ir.FormatWagons(want)),
			Actual:   fmt.Sprintf("%s = [%s]", a.Rail, ir.FormatWagons(got)),
		}
	}
	return nil
}

// assertTraceContains checks if the trace contains a matching move.
func assertTraceContains(trace []ir.ActionRecord, a Assertion) error {
	for _, rec := range trace {
		if a.Move.matches(rec) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: a.Move.String(),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that matching moves appear in the given order.
// Moves don't need to be consecutive; each match must come strictly after
// the previous one.
func assertTraceOrder(trace []ir.ActionRecord, a Assertion) error {
	pos := 0
	for i, m := range a.Moves {
		found := false
		for pos < len(trace) {
			rec := trace[pos]
			pos++
			if m.matches(rec) {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("moves in order: %v", a.Moves),
				Actual:   fmt.Sprintf("no %s after step %d", m, i),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks that exactly Count moves match.
func assertTraceCount(trace []ir.ActionRecord, a Assertion) error {
	count := 0
	for _, rec := range trace {
		if a.Move.matches(rec) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Move),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertRunStatus reads the stored run and compares its status.
func assertRunStatus(ctx context.Context, st *store.Store, runID string, a Assertion) error {
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("run_status: %w", err)
	}
	if string(run.Status) != a.Status {
		return &AssertionError{
			Type:     AssertRunStatus,
			Expected: a.Status,
			Actual:   string(run.Status),
		}
	}
	return nil
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for run_status assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertMoveCount:
			err = assertMoveCount(result, assertion)
		case AssertMaxMoves:
			err = assertMaxMoves(result, assertion)
		case AssertFinalRail:
			err = assertFinalRail(result, assertion)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertRunStatus:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: run_status requires database context", i)
			} else {
				err = assertRunStatus(actx.Ctx, actx.Store, result.RunID, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func toWagons(vals []int64) []ir.Wagon {
	out := make([]ir.Wagon, len(vals))
	for i, v := range vals {
		out[i] = ir.Wagon(v)
	}
	return out
}
