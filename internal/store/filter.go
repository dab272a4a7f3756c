package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/syn-ce/os/internal/ir"
)

// Predicate is a condition on the runs table.
//
// This is a sealed interface - only types in this package implement it.
// Predicates compile to parameterized SQL; values are never interpolated.
//
// Predicate types:
//   - Equals: column = value
//   - And: all predicates must be true
type Predicate interface {
	predicateNode()
}

// Equals matches rows whose column equals Value.
// Value must be a string or an int64.
type Equals struct {
	Column string
	Value  any
}

func (Equals) predicateNode() {}

// And matches rows that satisfy every predicate.
// An empty And matches every row.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// filterColumns are the runs columns a predicate may reference.
var filterColumns = map[string]bool{
	"id":             true,
	"name":           true,
	"status":         true,
	"move_count":     true,
	"decisions_used": true,
	"digest":         true,
	"engine_version": true,
}

// RunFilter selects runs by name and status. Zero fields match everything.
type RunFilter struct {
	Name   string
	Status ir.RunStatus
}

// Predicate converts the filter into an And of Equals.
func (f RunFilter) Predicate() Predicate {
	and := And{}
	if f.Name != "" {
		and.Predicates = append(and.Predicates, Equals{Column: "name", Value: f.Name})
	}
	if f.Status != "" {
		and.Predicates = append(and.Predicates, Equals{Column: "status", Value: string(f.Status)})
	}
	return and
}

// ListRunsWhere returns the runs matching p in insertion order.
// A nil predicate matches every run.
func (s *Store) ListRunsWhere(ctx context.Context, p Predicate) ([]ir.Run, error) {
	query, params, err := compileRunQuery(p)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// compileRunQuery builds the SELECT for ListRunsWhere.
// Every query ends with ORDER BY rowid so listings are stable.
func compileRunQuery(p Predicate) (string, []any, error) {
	where, params, err := compilePredicate(p)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return `SELECT ` + runColumns + ` FROM runs WHERE ` + where + ` ORDER BY rowid ASC`, params, nil
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case Equals:
		return compileEquals(pred)
	case *Equals:
		return compileEquals(*pred)
	case And:
		return compileAnd(pred)
	case *And:
		return compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq Equals) (string, []any, error) {
	if !filterColumns[eq.Column] {
		return "", nil, fmt.Errorf("unknown column %q", eq.Column)
	}
	switch v := eq.Value.(type) {
	case string, int64:
	case int:
		eq.Value = int64(v)
	default:
		return "", nil, fmt.Errorf("column %s: unsupported value type %T", eq.Column, eq.Value)
	}
	return eq.Column + " = ?", []any{eq.Value}, nil
}

func compileAnd(and And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}
	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, p := range and.Predicates {
		sql, ps, err := compilePredicate(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	return strings.Join(parts, " AND "), params, nil
}
