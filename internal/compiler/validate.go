package compiler

import (
	"fmt"
	"regexp"

	"github.com/syn-ce/os/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// YardSpec errors (E101-E109)
	ErrYardNameInvalid     = "E101" // name empty or not a plain identifier
	ErrMalformedDecision   = "E102" // token outside {LEFT, RIGHT}
	ErrDecisionsWithSearch = "E103" // decisions given but the search oracle is selected
	ErrDuplicateYardName   = "E104" // two yards share a name
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
// Supports YardSpec and lists of them.
func Validate(v any) []ValidationError {
	switch y := v.(type) {
	case *ir.YardSpec:
		return validateYard(y)
	case ir.YardSpec:
		return validateYard(&y)
	case []*ir.YardSpec:
		return validateYards(y)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// yardNamePattern matches plain identifiers such as "small" or "rush_hour-2".
var yardNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

func validateYard(spec *ir.YardSpec) []ValidationError {
	var errs []ValidationError

	if !yardNamePattern.MatchString(spec.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("invalid yard name %q", spec.Name),
			Code:    ErrYardNameInvalid,
		})
	}

	for i, d := range spec.Decisions {
		if !d.Valid() {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("decisions[%d]", i),
				Message: fmt.Sprintf("invalid token %q, must be LEFT or RIGHT", string(d)),
				Code:    ErrMalformedDecision,
			})
		}
	}

	if spec.Search && len(spec.Decisions) > 0 {
		errs = append(errs, ValidationError{
			Field:   "decisions",
			Message: "decisions are ignored when oracle is \"search\"",
			Code:    ErrDecisionsWithSearch,
		})
	}

	return errs
}

func validateYards(specs []*ir.YardSpec) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for _, spec := range specs {
		if seen[spec.Name] {
			errs = append(errs, ValidationError{
				Field:   "name",
				Message: fmt.Sprintf("duplicate yard name: %q", spec.Name),
				Code:    ErrDuplicateYardName,
			})
		}
		seen[spec.Name] = true
		errs = append(errs, validateYard(spec)...)
	}
	return errs
}
