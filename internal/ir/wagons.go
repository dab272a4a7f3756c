package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TargetValues returns the sorted distinct values of wagons.
func TargetValues(wagons []Wagon) []Wagon {
	out := slices.Clone(wagons)
	slices.Sort(out)
	return slices.Compact(out)
}

// IsNonDecreasing reports whether wagons are in non-decreasing order.
func IsNonDecreasing(wagons []Wagon) bool {
	return slices.IsSorted(wagons)
}

// SameMultiset reports whether a and b hold the same values with the same
// multiplicities.
func SameMultiset(a, b []Wagon) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := slices.Clone(a), slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}

// ParseWagons parses a comma-separated list of integers, e.g. "3,1,2".
func ParseWagons(s string) ([]Wagon, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []Wagon{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]Wagon, 0, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("wagon[%d]: %w", i, err)
		}
		out = append(out, Wagon(n))
	}
	return out, nil
}

// FormatWagons renders wagons as a space-separated list.
func FormatWagons(wagons []Wagon) string {
	parts := make([]string, len(wagons))
	for i, w := range wagons {
		parts[i] = strconv.FormatInt(int64(w), 10)
	}
	return strings.Join(parts, " ")
}
