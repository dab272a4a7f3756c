// Package ir provides canonical representation types for yard runs.
//
// This package contains type definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Wagon values are int64, never floats
//   - Rail snapshots list wagons from the accessible end inward
//   - All JSON tags use snake_case
//   - Ordering uses logical sequence numbers (seq), never wall-clock time
package ir
