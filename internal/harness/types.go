package harness

import "github.com/syn-ce/os/internal/ir"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// RunID is the stored run's identifier.
	RunID string `json:"run_id"`

	// Decisions is the plan handed to the switcher.
	Decisions ir.DecisionSequence `json:"decisions"`

	MoveCount     int `json:"move_count"`
	DecisionsUsed int `json:"decisions_used"`

	// Rails holds the final contents of every rail, bottom first.
	Rails map[ir.RailName][]ir.Wagon `json:"rails"`

	// ErrorCode is the shunt error code if the sort failed.
	ErrorCode string `json:"error_code,omitempty"`

	// Trace contains every move in order.
	Trace []ir.ActionRecord `json:"trace"`

	// Digest is the trace digest.
	Digest string `json:"digest"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Rails:  make(map[ir.RailName][]ir.Wagon),
		Trace:  []ir.ActionRecord{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Main returns the final main rail contents.
func (r *Result) Main() []ir.Wagon {
	return r.Rails[ir.Main]
}
