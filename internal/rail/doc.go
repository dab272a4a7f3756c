// Package rail implements the single-ended tracks of a marshalling yard.
//
// A Rail is a stack: wagons are pushed onto and popped from the accessible
// end only. Positions are measured from the accessible end inward, so the
// wagon that would be popped next sits at position 0.
//
// A Yard maps rail names to rails. Lookups by name return an
// UnknownRailError rather than panicking.
package rail
