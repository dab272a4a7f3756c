package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/syn-ce/os/internal/ir"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// ErrRunFinished is returned when completing or failing a run that is no
// longer running.
var ErrRunFinished = errors.New("run already finished")

// Outcome is the result of a sort, written when a run finishes.
type Outcome struct {
	MoveCount     int
	DecisionsUsed int
	Main          []ir.Wagon
	Digest        string
}

// BeginRun inserts a run in the running state.
// Status, MoveCount, DecisionsUsed, Main, Digest and Error of run are
// ignored; they are set by CompleteRun or FailRun.
func (s *Store) BeginRun(ctx context.Context, run ir.Run) error {
	if run.ID == "" {
		return fmt.Errorf("begin run: empty id")
	}
	parking, err := marshalWagons(run.Parking)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	targets, err := marshalWagons(run.Targets)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	decisions, err := marshalDecisions(run.Decisions)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, name, parking, targets, decisions, status, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Name,
		parking,
		targets,
		decisions,
		string(ir.RunRunning),
		run.EngineVersion,
		run.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// WriteMove appends one move to a run.
// Uses ON CONFLICT(run_id, seq) DO NOTHING so a retried write is a no-op.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteMove(ctx context.Context, runID string, rec ir.ActionRecord) error {
	main, err := marshalWagons(rec.Main)
	if err != nil {
		return fmt.Errorf("write move: %w", err)
	}
	siding, err := marshalWagons(rec.Siding)
	if err != nil {
		return fmt.Errorf("write move: %w", err)
	}
	parking, err := marshalWagons(rec.Parking)
	if err != nil {
		return fmt.Errorf("write move: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO moves
		(run_id, seq, wagon, from_rail, to_rail, main, siding, parking)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		runID,
		rec.Seq,
		int64(rec.Wagon),
		string(rec.From),
		string(rec.To),
		main,
		siding,
		parking,
	)
	if err != nil {
		return fmt.Errorf("write move: %w", err)
	}
	return nil
}

// CompleteRun marks a running run as completed.
func (s *Store) CompleteRun(ctx context.Context, id string, out Outcome) error {
	return s.finishRun(ctx, id, ir.RunCompleted, out, "")
}

// FailRun marks a running run as failed with the given error message.
// out records how far the sort got.
func (s *Store) FailRun(ctx context.Context, id string, out Outcome, msg string) error {
	return s.finishRun(ctx, id, ir.RunFailed, out, msg)
}

func (s *Store) finishRun(ctx context.Context, id string, status ir.RunStatus, out Outcome, msg string) error {
	main, err := marshalWagons(out.Main)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("finish run %s: begin tx: %w", id, err)
	}
	defer tx.Rollback() // No-op if committed

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM runs WHERE id = ?`, id).Scan(&current)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, notFound(err))
	}
	if ir.RunStatus(current) != ir.RunRunning {
		return fmt.Errorf("finish run %s: %w (status %s)", id, ErrRunFinished, current)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, move_count = ?, decisions_used = ?, main = ?, digest = ?, error = ?
		WHERE id = ?
	`,
		string(status),
		out.MoveCount,
		out.DecisionsUsed,
		main,
		out.Digest,
		msg,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("finish run %s: commit: %w", id, err)
	}
	return nil
}
