// Package oracle supplies decision sequences to the switcher.
//
// Static returns a fixed, caller-provided plan. Search computes a plan with
// the fewest total moves by trying both drain orders at every ambiguous
// target on cloned switchers, memoizing on the source rail contents.
package oracle
