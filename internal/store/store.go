package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stamped into PRAGMA user_version of every audit database.
// A database carrying another non-zero version was written by an
// incompatible build and is not opened.
const schemaVersion = 1

// ErrSchemaVersion is returned by Open for a database whose user_version
// does not match schemaVersion.
var ErrSchemaVersion = errors.New("unsupported audit schema version")

// pragmas are applied to the single connection on every Open.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Store holds the audit trail of sorts: one row per run and one per move.
type Store struct {
	db *sql.DB
}

// Open opens the audit database at path, creating it when missing.
// The runs and moves tables are created on first use; reopening an existing
// database leaves its rows untouched.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db %s: %w", path, err)
	}
	// One connection: a sort writes its moves serially and pragmas are
	// per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open audit db %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func prepare(db *sql.DB) error {
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version != 0 && version != schemaVersion {
		return fmt.Errorf("%w: database has %d, want %d", ErrSchemaVersion, version, schemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if version == 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("stamp user_version: %w", err)
		}
	}
	return nil
}

// Close closes the database. Closing a zero Store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Count returns the number of stored runs and moves.
func (s *Store) Count(ctx context.Context) (runs, moves int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM runs), (SELECT COUNT(*) FROM moves)
	`).Scan(&runs, &moves)
	if err != nil {
		return 0, 0, fmt.Errorf("count: %w", err)
	}
	return runs, moves, nil
}
