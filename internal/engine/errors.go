package engine

import (
	"errors"
	"fmt"

	"github.com/syn-ce/os/internal/ir"
	"github.com/syn-ce/os/internal/rail"
)

// ShuntError represents a fatal error detected during a sort.
//
// Shunt errors include:
//   - Empty rail: a pop or peek hit an empty rail (plan/yard mismatch)
//   - Unknown rail: a rail name did not resolve (configuration error)
//   - Malformed decisions: a token outside {LEFT, RIGHT}
//   - Invalid targets: target values differ from the parking contents
//
// None of them are recoverable; the caller must restart with corrected input.
type ShuntError struct {
	// Code identifies the error category.
	Code ShuntErrorCode

	// Message is a human-readable description.
	Message string

	// Value is the target value being placed, if any.
	Value ir.Wagon

	// HasValue reports whether Value is meaningful.
	HasValue bool

	// Err is the underlying error, if any.
	Err error
}

// ShuntErrorCode categorizes shunt errors.
type ShuntErrorCode string

const (
	// ErrCodeEmptyRail indicates a pop or peek on a rail with no wagons.
	ErrCodeEmptyRail ShuntErrorCode = "EMPTY_RAIL"

	// ErrCodeUnknownRail indicates a rail lookup by name failed.
	ErrCodeUnknownRail ShuntErrorCode = "UNKNOWN_RAIL"

	// ErrCodeMalformedDecisions indicates a token outside {LEFT, RIGHT}.
	ErrCodeMalformedDecisions ShuntErrorCode = "MALFORMED_DECISIONS"

	// ErrCodeInvalidTargets indicates targets are not the sorted distinct
	// values of the parking rail.
	ErrCodeInvalidTargets ShuntErrorCode = "INVALID_TARGETS"

	// ErrCodeOrderViolation indicates main would receive a smaller value
	// than it already holds.
	ErrCodeOrderViolation ShuntErrorCode = "ORDER_VIOLATION"

	// ErrCodeIncompleteSort indicates wagons remained on a source rail.
	ErrCodeIncompleteSort ShuntErrorCode = "INCOMPLETE_SORT"

	// ErrCodeRecorderFailed indicates the recorder rejected a move.
	ErrCodeRecorderFailed ShuntErrorCode = "RECORDER_FAILED"
)

// Error implements the error interface.
func (e *ShuntError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.HasValue {
		msg = fmt.Sprintf("%s (value=%d)", msg, e.Value)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ShuntError) Unwrap() error {
	return e.Err
}

// CodeOf returns the ShuntErrorCode of err, or "" if err is not a ShuntError.
func CodeOf(err error) ShuntErrorCode {
	var se *ShuntError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsEmptyRailError returns true if err is or wraps a rail.EmptyRailError.
func IsEmptyRailError(err error) bool {
	var ere *rail.EmptyRailError
	return errors.As(err, &ere)
}

// IsUnknownRailError returns true if err is or wraps a rail.UnknownRailError.
func IsUnknownRailError(err error) bool {
	var ure *rail.UnknownRailError
	return errors.As(err, &ure)
}

// IsMalformedDecisionError returns true if err is or wraps an
// ir.MalformedDecisionError.
func IsMalformedDecisionError(err error) bool {
	var mde *ir.MalformedDecisionError
	return errors.As(err, &mde)
}

// wrapRailError classifies an error coming from the rail package.
func wrapRailError(value ir.Wagon, err error) *ShuntError {
	code := ErrCodeEmptyRail
	if IsUnknownRailError(err) {
		code = ErrCodeUnknownRail
	}
	return &ShuntError{
		Code:     code,
		Message:  "rail state inconsistent with plan",
		Value:    value,
		HasValue: true,
		Err:      err,
	}
}
