package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/syn-ce/os/internal/compiler"
	"github.com/syn-ce/os/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Parking lists the initial wagons from the far end to the accessible end.
	Parking []int64 `yaml:"parking,omitempty"`

	// Decisions are the tokens for the static oracle (L, R, LEFT, RIGHT).
	// Unknown tokens are passed through so that failures can be tested.
	Decisions []string `yaml:"decisions,omitempty"`

	// Oracle is "static" (default) or "search".
	Oracle string `yaml:"oracle,omitempty"`

	// YardFile is a CUE file holding the yard definition. Relative paths
	// are resolved against the base path given to LoadScenarioWithBasePath.
	YardFile string `yaml:"yard_file,omitempty"`

	// Yard names the yard inside YardFile.
	Yard string `yaml:"yard,omitempty"`

	// Expect checks the sort outcome.
	Expect *Expect `yaml:"expect,omitempty"`

	// Assertions validate the trace and stored run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect specifies the expected outcome of the sort.
// Unset fields are not checked.
type Expect struct {
	Main          []int64 `yaml:"main,omitempty"`
	Moves         *int    `yaml:"moves,omitempty"`
	DecisionsUsed *int    `yaml:"decisions_used,omitempty"`

	// Error is the expected shunt error code, e.g. MALFORMED_DECISIONS.
	// If empty, the sort must succeed.
	Error string `yaml:"error,omitempty"`
}

// MoveMatch selects moves. Unset fields match anything.
type MoveMatch struct {
	Wagon *int64 `yaml:"wagon,omitempty"`
	From  string `yaml:"from,omitempty"`
	To    string `yaml:"to,omitempty"`
}

// Assertion validates the trace or the stored run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is used by move_count, max_moves and trace_count.
	Count int `yaml:"count,omitempty"`

	// Rail and Wagons are used by final_rail. Wagons are bottom first.
	Rail   string  `yaml:"rail,omitempty"`
	Wagons []int64 `yaml:"wagons,omitempty"`

	// Move is used by trace_contains and trace_count.
	Move *MoveMatch `yaml:"move,omitempty"`

	// Moves is the expected order (used by trace_order).
	Moves []MoveMatch `yaml:"moves,omitempty"`

	// Status is used by run_status.
	Status string `yaml:"status,omitempty"`
}

// Assertion type constants.
const (
	AssertMoveCount     = "move_count"
	AssertMaxMoves      = "max_moves"
	AssertFinalRail     = "final_rail"
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertRunStatus     = "run_status"
)

// Oracle names.
const (
	OracleStatic = "static"
	OracleSearch = "search"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative yard_file is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving yard_file relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.YardFile != "" && !filepath.IsAbs(scenario.YardFile) && basePath != "" {
		scenario.YardFile = filepath.Join(basePath, scenario.YardFile)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML without validating it.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Oracle {
	case "", OracleStatic, OracleSearch:
	default:
		return fmt.Errorf("oracle must be %q or %q, got %q", OracleStatic, OracleSearch, s.Oracle)
	}

	if s.Oracle == OracleSearch && len(s.Decisions) > 0 {
		return fmt.Errorf("decisions cannot be combined with the search oracle")
	}

	if s.YardFile != "" {
		if len(s.Parking) > 0 || len(s.Decisions) > 0 {
			return fmt.Errorf("yard_file cannot be combined with parking or decisions")
		}
		if s.Yard == "" {
			return fmt.Errorf("yard is required with yard_file")
		}
		if _, err := os.Stat(s.YardFile); os.IsNotExist(err) {
			return fmt.Errorf("yard file not found: %s", s.YardFile)
		}
	} else if s.Yard != "" {
		return fmt.Errorf("yard requires yard_file")
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMoveCount, AssertMaxMoves:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: %s count must be >= 0", index, a.Type)
		}
	case AssertFinalRail:
		if a.Rail == "" {
			return fmt.Errorf("assertions[%d]: final_rail requires rail", index)
		}
	case AssertTraceContains:
		if a.Move == nil {
			return fmt.Errorf("assertions[%d]: trace_contains requires move", index)
		}
	case AssertTraceCount:
		if a.Move == nil {
			return fmt.Errorf("assertions[%d]: trace_count requires move", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: trace_count count must be >= 0", index)
		}
	case AssertTraceOrder:
		if len(a.Moves) < 2 {
			return fmt.Errorf("assertions[%d]: trace_order requires at least 2 moves", index)
		}
	case AssertRunStatus:
		if a.Status == "" {
			return fmt.Errorf("assertions[%d]: run_status requires status", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// loadYard compiles the named yard from a CUE file.
func loadYard(path, name string) (*ir.YardSpec, error) {
	specs, err := compiler.LoadYardFile(path)
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		if spec.Name == name {
			return spec, nil
		}
	}
	return nil, fmt.Errorf("yard %q not found in %s", name, path)
}
