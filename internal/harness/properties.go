package harness

import (
	"fmt"

	"github.com/syn-ce/os/internal/ir"
)

// CheckProperties verifies the properties every completed sort must have:
// main holds exactly the initial wagons, in non-decreasing order, and the
// source rails are empty. It returns one message per violation.
func CheckProperties(parking []ir.Wagon, result *Result) []string {
	var errs []string
	main := result.Main()

	if !ir.SameMultiset(parking, main) {
		errs = append(errs, fmt.Sprintf("conservation: parking [%s] became main [%s]",
			ir.FormatWagons(parking), ir.FormatWagons(main)))
	}
	if !ir.IsNonDecreasing(main) {
		errs = append(errs, fmt.Sprintf("sortedness: main [%s] is not ascending", ir.FormatWagons(main)))
	}
	for _, name := range []ir.RailName{ir.Parking, ir.Siding} {
		if rest := result.Rails[name]; len(rest) > 0 {
			errs = append(errs, fmt.Sprintf("emptiness: %s still holds [%s]", name, ir.FormatWagons(rest)))
		}
	}
	if len(result.Trace) != result.MoveCount {
		errs = append(errs, fmt.Sprintf("trace: %d records for %d moves", len(result.Trace), result.MoveCount))
	}
	return errs
}
