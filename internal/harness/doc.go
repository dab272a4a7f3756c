// Package harness provides conformance testing for yard sorts.
//
// A scenario names an initial parking rail and a plan, runs the real
// switcher against a fresh in-memory store, and checks the outcome,
// the move trace and the stored audit.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: split_right
//	description: "RIGHT is cheaper at the only split"
//	parking: [2, 1, 3, 1, 2]        # bottom to accessible end
//	decisions: [RIGHT]              # optional, default none
//	oracle: static                  # or search
//	expect:
//	  main: [1, 1, 2, 2, 3]
//	  moves: 8
//	  decisions_used: 1
//	assertions:
//	  - type: trace_contains
//	    move: { wagon: 3, from: siding, to: parking }
//	  - type: max_moves
//	    count: 8
//
// Instead of parking and decisions, a scenario may reference a CUE yard
// definition with yard_file and yard.
//
// # Assertion Types
//
//   - move_count: total moves equal count
//   - max_moves: total moves at most count
//   - final_rail: a rail holds exactly the given wagons
//   - trace_contains: some move matches
//   - trace_order: matching moves appear in the given order
//   - trace_count: exactly count moves match
//   - run_status: the stored run has the given status
//
// # Properties
//
// Every completed run is also checked for conservation, sortedness and
// empty source rails, and its stored trace is replayed to confirm
// determinism.
//
// # Deterministic Testing
//
// Run IDs come from testutil.SequentialRunIDs and move numbers from the
// recorders' logical clocks, so identical scenarios produce byte-identical
// golden traces.
package harness
