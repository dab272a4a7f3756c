package rail

import (
	"fmt"

	"github.com/syn-ce/os/internal/ir"
)

// EmptyRailError is returned when a wagon is requested from an empty rail.
type EmptyRailError struct {
	Rail ir.RailName
	Op   string
}

func (e *EmptyRailError) Error() string {
	return fmt.Sprintf("rail %s is empty (%s)", e.Rail, e.Op)
}

// UnknownRailError is returned when a name does not resolve to a rail.
type UnknownRailError struct {
	Name ir.RailName
}

func (e *UnknownRailError) Error() string {
	return fmt.Sprintf("unknown rail %q", e.Name)
}
