package engine

import (
	"log/slog"
	"slices"

	"github.com/syn-ce/os/internal/ir"
	"github.com/syn-ce/os/internal/logging"
	"github.com/syn-ce/os/internal/rail"
)

// Recorder receives one ir.Move per wagon relocation, in move order.
// Implementations assign sequence numbers. A non-nil error aborts the sort.
type Recorder interface {
	Record(m ir.Move) error
}

// Oracle supplies the decision sequence for an initial parking rail, one
// token per ambiguity in ascending target order. The switcher trusts the
// sequence to be optimal and never checks.
type Oracle interface {
	Plan(parking []ir.Wagon) (ir.DecisionSequence, error)
}

type discardRecorder struct{}

func (discardRecorder) Record(ir.Move) error { return nil }

// Switcher executes a decision plan against the rails of one yard.
//
// INVARIANTS:
//   - only drainValueFromTo moves wagons
//   - main receives wagons in non-decreasing order
//   - the wagon multiset across the three rails never changes
type Switcher struct {
	yard    *rail.Yard
	parking *rail.Rail
	siding  *rail.Rail
	main    *rail.Rail
	targets []ir.Wagon

	recorder Recorder
	logger   *slog.Logger

	decisions   ir.DecisionSequence
	nextToken   int // index of the next unconsumed decision
	ambiguities int // ambiguous targets seen, including defaulted ones
	placed      int // index of the next target to place
	moves       int

	lastMain    ir.Wagon
	mainStarted bool
}

// Option configures a Switcher.
type Option func(*Switcher)

// WithRecorder sets the recorder that receives every move.
// Default: moves are discarded.
func WithRecorder(r Recorder) Option {
	return func(s *Switcher) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger used for per-target debug output.
// Default: logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(s *Switcher) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Switcher over the parking, siding and main rails of y.
//
// targets must be the ascending distinct values of the parking rail. If
// targets is nil it is derived from parking. Any other list is rejected
// with ErrCodeInvalidTargets.
func New(y *rail.Yard, targets []ir.Wagon, opts ...Option) (*Switcher, error) {
	s := &Switcher{
		yard:     y,
		recorder: discardRecorder{},
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.parking, err = y.Lookup(ir.Parking); err != nil {
		return nil, &ShuntError{Code: ErrCodeUnknownRail, Message: "yard has no parking rail", Err: err}
	}
	if s.siding, err = y.Lookup(ir.Siding); err != nil {
		return nil, &ShuntError{Code: ErrCodeUnknownRail, Message: "yard has no siding rail", Err: err}
	}
	if s.main, err = y.Lookup(ir.Main); err != nil {
		return nil, &ShuntError{Code: ErrCodeUnknownRail, Message: "yard has no main rail", Err: err}
	}

	want := ir.TargetValues(s.parking.Values())
	switch {
	case targets == nil:
		s.targets = want
	case slices.Equal(targets, want):
		s.targets = slices.Clone(targets)
	default:
		return nil, &ShuntError{
			Code:    ErrCodeInvalidTargets,
			Message: "targets must be the sorted distinct parking values " + ir.FormatWagons(want) + ", got " + ir.FormatWagons(targets),
		}
	}

	if top, err := s.main.NextValue(); err == nil {
		s.lastMain = top
		s.mainStarted = true
	}

	return s, nil
}

// Shunt places every target value on main and returns the number of moves
// performed.
//
// For each target in ascending order: if it sits on only one source rail,
// that rail is drained onto main with blockers moved to the other source
// rail. If it sits on both, the next decision token chooses the order
// (LEFT: siding first, RIGHT: parking first). When the sequence is
// exhausted, LEFT is used.
//
// decisions is validated before the first move.
func (s *Switcher) Shunt(decisions ir.DecisionSequence) (int, error) {
	if err := decisions.Validate(); err != nil {
		return s.moves, &ShuntError{Code: ErrCodeMalformedDecisions, Message: "decision sequence rejected", Err: err}
	}
	s.decisions = slices.Clone(decisions)
	s.nextToken = 0

	for s.placed < len(s.targets) {
		v := s.targets[s.placed]
		d := ir.Left
		if s.Ambiguous(v) {
			d = s.nextDecision()
		}
		if err := s.place(v, d); err != nil {
			return s.moves, err
		}
	}

	if err := s.checkComplete(); err != nil {
		return s.moves, err
	}

	s.logger.Debug("shunt complete",
		"moves", s.moves,
		"ambiguities", s.ambiguities,
		"decisions_used", s.nextToken,
	)
	return s.moves, nil
}

// PlaceNext places the next target using d if it is ambiguous. It returns
// the target that was placed and whether a decision was needed. Used by
// planners that choose decisions step by step.
func (s *Switcher) PlaceNext(d ir.Decision) (ir.Wagon, bool, error) {
	if s.Done() {
		return 0, false, &ShuntError{Code: ErrCodeIncompleteSort, Message: "no targets left to place"}
	}
	if !d.Valid() {
		return 0, false, &ShuntError{
			Code:    ErrCodeMalformedDecisions,
			Message: "decision rejected",
			Err:     &ir.MalformedDecisionError{Token: string(d)},
		}
	}
	v := s.targets[s.placed]
	ambiguous := s.Ambiguous(v)
	return v, ambiguous, s.place(v, d)
}

// Done reports whether every target has been placed.
func (s *Switcher) Done() bool {
	return s.placed >= len(s.targets)
}

// NextTarget returns the next target value to place.
func (s *Switcher) NextTarget() (ir.Wagon, bool) {
	if s.Done() {
		return 0, false
	}
	return s.targets[s.placed], true
}

// Ambiguous reports whether value currently sits on both source rails.
func (s *Switcher) Ambiguous(value ir.Wagon) bool {
	_, onParking := s.parking.SmallestPositionOf(value)
	_, onSiding := s.siding.SmallestPositionOf(value)
	return onParking && onSiding
}

// MoveCount returns the number of moves performed so far.
func (s *Switcher) MoveCount() int {
	return s.moves
}

// DecisionsUsed returns how many tokens were taken from the sequence.
// Ambiguities resolved by the LEFT default are not counted.
func (s *Switcher) DecisionsUsed() int {
	return s.nextToken
}

// Ambiguities returns how many ambiguous targets have been placed.
func (s *Switcher) Ambiguities() int {
	return s.ambiguities
}

// Targets returns a copy of the target values.
func (s *Switcher) Targets() []ir.Wagon {
	return slices.Clone(s.targets)
}

// Main returns the main rail contents, first pushed first.
func (s *Switcher) Main() []ir.Wagon {
	return s.main.Values()
}

// StateKey identifies the source rail contents and placement progress.
// Two switchers with equal keys need the same moves from here on.
func (s *Switcher) StateKey() string {
	return s.parking.Key() + "|" + s.siding.Key()
}

// Clone returns an independent switcher over a deep copy of the yard.
// The clone discards moves and logs.
func (s *Switcher) Clone() *Switcher {
	y := s.yard.Clone()
	c := *s
	c.yard = y
	c.parking, _ = y.Lookup(ir.Parking)
	c.siding, _ = y.Lookup(ir.Siding)
	c.main, _ = y.Lookup(ir.Main)
	c.recorder = discardRecorder{}
	c.logger = logging.Discard()
	c.decisions = slices.Clone(s.decisions)
	return &c
}

func (s *Switcher) nextDecision() ir.Decision {
	if s.nextToken < len(s.decisions) {
		d := s.decisions[s.nextToken]
		s.nextToken++
		return d
	}
	// With no tokens left the order only matters if another ambiguity can
	// follow, which an oracle-produced plan already accounts for.
	return ir.Left
}

// place drains every wagon carrying v onto main.
func (s *Switcher) place(v ir.Wagon, d ir.Decision) error {
	pPos, onParking := s.parking.SmallestPositionOf(v)
	sPos, onSiding := s.siding.SmallestPositionOf(v)

	var err error
	switch {
	case onParking && onSiding:
		s.ambiguities++
		s.logger.Debug("ambiguous target",
			"value", int64(v), "parking_pos", pPos, "siding_pos", sPos, "decision", d.String())
		if d == ir.Right {
			if err = s.drainValueFromTo(v, s.parking, s.siding); err == nil {
				err = s.drainValueFromTo(v, s.siding, s.parking)
			}
		} else {
			if err = s.drainValueFromTo(v, s.siding, s.parking); err == nil {
				err = s.drainValueFromTo(v, s.parking, s.siding)
			}
		}
	case onParking:
		s.logger.Debug("target on parking", "value", int64(v), "pos", pPos)
		err = s.drainValueFromTo(v, s.parking, s.siding)
	case onSiding:
		s.logger.Debug("target on siding", "value", int64(v), "pos", sPos)
		err = s.drainValueFromTo(v, s.siding, s.parking)
	default:
		s.logger.Debug("target already placed", "value", int64(v))
	}
	if err != nil {
		return err
	}

	s.placed++
	return nil
}

// drainValueFromTo moves every wagon carrying value from `from` onto main,
// relocating each blocker it meets onto `to` first.
func (s *Switcher) drainValueFromTo(value ir.Wagon, from, to *rail.Rail) error {
	for from.Contains(value) {
		for {
			next, err := from.NextValue()
			if err != nil {
				return wrapRailError(value, err)
			}
			if next == value {
				break
			}
			if err := s.move(value, from, to); err != nil {
				return err
			}
		}
		if err := s.move(value, from, s.main); err != nil {
			return err
		}
	}
	return nil
}

// move relocates the accessible wagon of from onto to and reports it.
func (s *Switcher) move(target ir.Wagon, from, to *rail.Rail) error {
	w, err := from.Pop()
	if err != nil {
		return wrapRailError(target, err)
	}

	if to == s.main {
		if s.mainStarted && w < s.lastMain {
			from.Push(w)
			return &ShuntError{
				Code:     ErrCodeOrderViolation,
				Message:  "main would receive " + ir.FormatWagons([]ir.Wagon{w}) + " after " + ir.FormatWagons([]ir.Wagon{s.lastMain}),
				Value:    target,
				HasValue: true,
			}
		}
		s.lastMain = w
		s.mainStarted = true
	}

	to.Push(w)
	s.moves++

	m := ir.Move{
		Wagon:   w,
		From:    from.Name(),
		To:      to.Name(),
		Main:    s.main.Snapshot(),
		Siding:  s.siding.Snapshot(),
		Parking: s.parking.Snapshot(),
	}
	if err := s.recorder.Record(m); err != nil {
		return &ShuntError{Code: ErrCodeRecorderFailed, Message: "recorder rejected move", Value: target, HasValue: true, Err: err}
	}
	return nil
}

// checkComplete verifies the postcondition of a finished sort.
func (s *Switcher) checkComplete() error {
	if s.parking.Len() != 0 || s.siding.Len() != 0 {
		return &ShuntError{
			Code: ErrCodeIncompleteSort,
			Message: "wagons left on source rails: parking=[" + ir.FormatWagons(s.parking.Values()) +
				"] siding=[" + ir.FormatWagons(s.siding.Values()) + "]",
		}
	}
	return nil
}
