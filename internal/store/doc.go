// Package store provides SQLite-backed durable storage for sort audits.
//
// The store keeps an append-only audit of finished and failed sorts:
//   - Runs: one row per sort with its inputs, outcome and trace digest
//   - Moves: one row per wagon relocation, keyed by (run_id, seq)
//
// Yard state is never persisted. A run cannot be resumed; it can only be
// inspected or replayed from its stored inputs.
//
// # Ordering
//
// Moves are always read with ORDER BY seq ASC. seq comes from a logical
// clock, never from wall time, so replay compares records one to one.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: moves must reference an existing run
package store
