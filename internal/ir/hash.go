package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed digests.
// The version suffix leaves room for algorithm migration.
const (
	DomainTrace = "yard/trace/v1"
	DomainPlan  = "yard/plan/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TraceDigest computes a stable digest of an ordered move trace.
// Two runs with the same initial parking and decisions produce the same digest.
func TraceDigest(records []ActionRecord) (string, error) {
	items := make([]any, len(records))
	for i, r := range records {
		items[i] = r.CanonicalMap()
	}
	data, err := MarshalCanonical(items)
	if err != nil {
		return "", fmt.Errorf("TraceDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, data), nil
}

// PlanDigest identifies an (initial parking, decisions) pair.
func PlanDigest(parking []Wagon, decisions DecisionSequence) (string, error) {
	data, err := MarshalCanonical(map[string]any{
		"parking":   nonNil(parking),
		"decisions": decisions.String(),
	})
	if err != nil {
		return "", fmt.Errorf("PlanDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPlan, data), nil
}

// MustTraceDigest is like TraceDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTraceDigest(records []ActionRecord) string {
	d, err := TraceDigest(records)
	if err != nil {
		panic(err)
	}
	return d
}
