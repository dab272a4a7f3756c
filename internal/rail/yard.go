package rail

import (
	"slices"

	"github.com/syn-ce/os/internal/ir"
)

// Yard owns the rails of one sort, keyed by name.
type Yard struct {
	rails map[ir.RailName]*Rail
}

// NewYard builds the standard parking, siding and main rails with parking
// pre-loaded. parking is listed from the far end to the accessible end.
func NewYard(parking []ir.Wagon) *Yard {
	return FromRails(
		New(ir.Parking, parking...),
		New(ir.Siding),
		New(ir.Main),
	)
}

// FromRails builds a yard from arbitrary rails. A later rail with the same
// name replaces an earlier one.
func FromRails(rails ...*Rail) *Yard {
	y := &Yard{rails: make(map[ir.RailName]*Rail, len(rails))}
	for _, r := range rails {
		y.rails[r.Name()] = r
	}
	return y
}

// Lookup returns the rail with the given name.
func (y *Yard) Lookup(name ir.RailName) (*Rail, error) {
	r, ok := y.rails[name]
	if !ok {
		return nil, &UnknownRailError{Name: name}
	}
	return r, nil
}

// Names returns the rail names in sorted order.
func (y *Yard) Names() []ir.RailName {
	names := make([]ir.RailName, 0, len(y.rails))
	for n := range y.rails {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Total returns the number of wagons across all rails.
func (y *Yard) Total() int {
	n := 0
	for _, r := range y.rails {
		n += r.Len()
	}
	return n
}

// Clone returns a deep copy of the yard.
func (y *Yard) Clone() *Yard {
	c := &Yard{rails: make(map[ir.RailName]*Rail, len(y.rails))}
	for n, r := range y.rails {
		c.rails[n] = r.Clone()
	}
	return c
}
