package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/syn-ce/os/internal/ir"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id string, parking ...ir.Wagon) ir.Run {
	return ir.Run{
		ID:            id,
		Name:          "test-" + id,
		Parking:       parking,
		Targets:       ir.TargetValues(parking),
		Decisions:     ir.DecisionSequence{},
		EngineVersion: "0.1.0",
		IRVersion:     "1",
	}
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, want %q", name, value, expected)
	}
	return nil
}
