package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"wagon", Wagon(7), "7"},
		{"rail name", Main, `"main"`},
		{"decision", Right, `"R"`},
		{"bool", true, "true"},
		{"empty wagons", []Wagon{}, "[]"},
		{"wagons", []Wagon{3, 1, 2}, "[3,1,2]"},
		{"decisions", DecisionSequence{Left, Right}, `["L","R"]`},
		{"empty object", map[string]any{}, "{}"},
		{"no html escape", "<a&b>", `"<a&b>"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  map[string]any{"y": 1, "x": 2},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"x":2,"y":1},"zebra":1}`, string(result))
}

func TestMarshalCanonicalRejectsFloatsAndNull(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"a": []any{1, nil}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `key "a"`)
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to a single code point.
	decomposed := "e\u0301"
	composed := "\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestActionRecordCanonicalMap(t *testing.T) {
	rec := ActionRecord{
		Seq: 1,
		Move: Move{
			Wagon:   1,
			From:    Parking,
			To:      Main,
			Main:    []Wagon{1},
			Parking: []Wagon{2},
		},
	}

	data, err := MarshalCanonical(rec.CanonicalMap())
	require.NoError(t, err)
	assert.Equal(t,
		`{"from":"parking","main":[1],"parking":[2],"seq":1,"siding":[],"to":"main","wagon":1}`,
		string(data))
}

func TestTraceDigest_StableAndOrderSensitive(t *testing.T) {
	a := ActionRecord{Seq: 1, Move: Move{Wagon: 1, From: Parking, To: Main, Main: []Wagon{1}}}
	b := ActionRecord{Seq: 2, Move: Move{Wagon: 2, From: Parking, To: Main, Main: []Wagon{2, 1}}}

	d1 := MustTraceDigest([]ActionRecord{a, b})
	d2 := MustTraceDigest([]ActionRecord{a, b})
	d3 := MustTraceDigest([]ActionRecord{b, a})

	assert.Equal(t, d1, d2)
	assert.NotEqual(t, d1, d3)
	assert.Len(t, d1, 64)
}

func TestPlanDigest(t *testing.T) {
	d1, err := PlanDigest([]Wagon{2, 1}, DecisionSequence{Left})
	require.NoError(t, err)
	d2, err := PlanDigest([]Wagon{2, 1}, DecisionSequence{Right})
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
}
