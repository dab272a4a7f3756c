package ir

import (
	"fmt"
	"strings"
)

// Decision selects which source rail is drained first when a target value
// sits on both parking and siding.
type Decision string

const (
	// Left drains siding first, then parking.
	Left Decision = "L"
	// Right drains parking first, then siding.
	Right Decision = "R"
)

// String returns the long token name.
func (d Decision) String() string {
	switch d {
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return string(d)
	}
}

// Valid reports whether d is one of Left or Right.
func (d Decision) Valid() bool {
	return d == Left || d == Right
}

// DecisionSequence is the ordered list of tokens consumed one per ambiguity.
type DecisionSequence []Decision

// String renders the sequence in compact form, e.g. "LRL".
func (s DecisionSequence) String() string {
	var b strings.Builder
	for _, d := range s {
		b.WriteString(string(d))
	}
	return b.String()
}

// Validate returns a MalformedDecisionError for the first invalid token.
func (s DecisionSequence) Validate() error {
	for i, d := range s {
		if !d.Valid() {
			return &MalformedDecisionError{Index: i, Token: string(d)}
		}
	}
	return nil
}

// MalformedDecisionError reports a token outside {LEFT, RIGHT}.
type MalformedDecisionError struct {
	Index int
	Token string
}

func (e *MalformedDecisionError) Error() string {
	return fmt.Sprintf("decision[%d]: invalid token %q (want LEFT or RIGHT)", e.Index, e.Token)
}

// ParseDecision accepts L, R, LEFT or RIGHT in any case.
func ParseDecision(token string) (Decision, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "L", "LEFT":
		return Left, nil
	case "R", "RIGHT":
		return Right, nil
	default:
		return "", &MalformedDecisionError{Token: token}
	}
}

// ParseDecisions parses a list of tokens.
func ParseDecisions(tokens []string) (DecisionSequence, error) {
	seq := make(DecisionSequence, 0, len(tokens))
	for i, tok := range tokens {
		d, err := ParseDecision(tok)
		if err != nil {
			return nil, &MalformedDecisionError{Index: i, Token: tok}
		}
		seq = append(seq, d)
	}
	return seq, nil
}

// ParseDecisionString parses either a compact form ("LRL") or a
// comma-separated list ("LEFT,RIGHT"). The empty string is an empty sequence.
func ParseDecisionString(s string) (DecisionSequence, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DecisionSequence{}, nil
	}
	if strings.Contains(s, ",") {
		return ParseDecisions(strings.Split(s, ","))
	}
	upper := strings.ToUpper(s)
	if upper == "LEFT" || upper == "RIGHT" {
		return ParseDecisions([]string{s})
	}
	tokens := make([]string, 0, len(s))
	for _, r := range s {
		tokens = append(tokens, string(r))
	}
	return ParseDecisions(tokens)
}
