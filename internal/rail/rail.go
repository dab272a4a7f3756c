package rail

import (
	"slices"
	"strconv"
	"strings"

	"github.com/syn-ce/os/internal/ir"
)

// Rail is an ordered, single-ended collection of wagons.
// The accessible end is the end of the backing slice.
type Rail struct {
	name   ir.RailName
	wagons []ir.Wagon
}

// New creates a rail holding wagons, listed from the far end to the
// accessible end. The slice is copied.
func New(name ir.RailName, wagons ...ir.Wagon) *Rail {
	return &Rail{name: name, wagons: slices.Clone(wagons)}
}

// Name returns the rail's name.
func (r *Rail) Name() ir.RailName {
	return r.name
}

// Len returns the number of wagons on the rail.
func (r *Rail) Len() int {
	return len(r.wagons)
}

// Push appends a wagon at the accessible end.
func (r *Rail) Push(w ir.Wagon) {
	r.wagons = append(r.wagons, w)
}

// Pop removes and returns the wagon at the accessible end.
func (r *Rail) Pop() (ir.Wagon, error) {
	n := len(r.wagons)
	if n == 0 {
		return 0, &EmptyRailError{Rail: r.name, Op: "pop"}
	}
	w := r.wagons[n-1]
	r.wagons = r.wagons[:n-1]
	return w, nil
}

// NextValue returns the wagon at the accessible end without removing it.
func (r *Rail) NextValue() (ir.Wagon, error) {
	n := len(r.wagons)
	if n == 0 {
		return 0, &EmptyRailError{Rail: r.name, Op: "next value"}
	}
	return r.wagons[n-1], nil
}

// SmallestPositionOf returns the distance from the accessible end to the
// nearest wagon carrying value. ok is false when no such wagon exists.
func (r *Rail) SmallestPositionOf(value ir.Wagon) (pos int, ok bool) {
	for i := len(r.wagons) - 1; i >= 0; i-- {
		if r.wagons[i] == value {
			return len(r.wagons) - 1 - i, true
		}
	}
	return 0, false
}

// Contains reports whether any wagon carries value.
func (r *Rail) Contains(value ir.Wagon) bool {
	_, ok := r.SmallestPositionOf(value)
	return ok
}

// Snapshot returns a copy of the contents, accessible end first.
func (r *Rail) Snapshot() []ir.Wagon {
	out := make([]ir.Wagon, len(r.wagons))
	for i, w := range r.wagons {
		out[len(r.wagons)-1-i] = w
	}
	return out
}

// Values returns a copy of the contents, first pushed first.
func (r *Rail) Values() []ir.Wagon {
	out := slices.Clone(r.wagons)
	if out == nil {
		out = []ir.Wagon{}
	}
	return out
}

// Clone returns an independent copy of the rail.
func (r *Rail) Clone() *Rail {
	return New(r.name, r.wagons...)
}

// Key returns a stable textual form of the contents for memoization.
func (r *Rail) Key() string {
	var b strings.Builder
	for i, w := range r.wagons {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(int64(w), 10))
	}
	return b.String()
}
