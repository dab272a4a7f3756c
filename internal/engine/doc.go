// Package engine implements the yard switcher.
//
// The Switcher moves every wagon from the parking rail to the main rail in
// ascending order, using the siding as the only temporary storage. It does
// not search for a plan: when a target value sits on both source rails it
// consumes the next token of a decision sequence computed elsewhere (see
// package oracle) and drains the rails in the order that token names.
//
// ARCHITECTURE:
//
// Single-threaded execution:
// A sort runs to completion in one call to Shunt. There are no goroutines,
// no suspension points and no cancellation. The three rails and the
// recorder are owned by exactly one Switcher for the duration of the sort.
//
// Move reporting:
// drainValueFromTo is the only place wagons move. Each move is reported to
// the Recorder as an ir.Move carrying post-move snapshots of all three rails.
// Recorders assign sequence numbers (see Clock).
//
// Failure model:
// Every error aborts the sort immediately. The decision sequence is
// validated before the first move, so malformed tokens never leave a
// partially filled main rail behind.
//
// CRITICAL PATTERNS:
//
// Determinism:
// Identical initial parking and identical decisions always produce the same
// sequence of moves. Replay relies on this to verify stored traces.
//
// Monotonic main:
// Every push onto main is checked against the previous one.
package engine
