package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/syn-ce/os/internal/ir"
)

const runColumns = `id, name, parking, targets, decisions, status, move_count,
	decisions_used, main, digest, error, engine_version, ir_version`

// ReadRun retrieves a single run by ID.
// Returns an error wrapping ErrRunNotFound if it does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, notFound(err))
	}
	return run, nil
}

// ListRuns returns every run in insertion order.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListRuns(ctx context.Context) ([]ir.Run, error) {
	return s.ListRunsWhere(ctx, nil)
}

// ReadMoves returns every move of a run ordered by seq.
// Returns an empty slice (not nil) if the run has no moves.
func (s *Store) ReadMoves(ctx context.Context, runID string) ([]ir.ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, wagon, from_rail, to_rail, main, siding, parking
		FROM moves
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	records := []ir.ActionRecord{}
	for rows.Next() {
		var (
			rec                   ir.ActionRecord
			wagon                 int64
			from, to              string
			main, siding, parking string
		)
		if err := rows.Scan(&rec.Seq, &wagon, &from, &to, &main, &siding, &parking); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		rec.Wagon = ir.Wagon(wagon)
		rec.From = ir.RailName(from)
		rec.To = ir.RailName(to)
		if rec.Main, err = unmarshalWagons(main); err != nil {
			return nil, err
		}
		if rec.Siding, err = unmarshalWagons(siding); err != nil {
			return nil, err
		}
		if rec.Parking, err = unmarshalWagons(parking); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}
	return records, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (ir.Run, error) {
	var (
		run                         ir.Run
		parking, targets, decisions string
		status, main                string
	)
	err := row.Scan(
		&run.ID,
		&run.Name,
		&parking,
		&targets,
		&decisions,
		&status,
		&run.MoveCount,
		&run.DecisionsUsed,
		&main,
		&run.Digest,
		&run.Error,
		&run.EngineVersion,
		&run.IRVersion,
	)
	if err != nil {
		return ir.Run{}, err
	}

	run.Status = ir.RunStatus(status)
	if run.Parking, err = unmarshalWagons(parking); err != nil {
		return ir.Run{}, err
	}
	if run.Targets, err = unmarshalWagons(targets); err != nil {
		return ir.Run{}, err
	}
	if run.Decisions, err = unmarshalDecisions(decisions); err != nil {
		return ir.Run{}, err
	}
	if run.Main, err = unmarshalWagons(main); err != nil {
		return ir.Run{}, err
	}
	return run, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRunNotFound
	}
	return err
}
