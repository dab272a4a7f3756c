package ir

// Wagon is the integer sort key carried by a single wagon.
// Wagons have no identity beyond their value and position.
type Wagon int64

// RailName names one of the rails in a yard.
type RailName string

// Standard rail names. Their roles are fixed for the duration of a sort.
const (
	Parking RailName = "parking" // initial holder of all wagons
	Siding  RailName = "siding"  // auxiliary storage
	Main    RailName = "main"    // sorted destination, receive-only
)

// Move describes a single wagon relocation as reported by the switcher.
//
// Snapshots are taken after the move and list wagons from the accessible
// end inward.
type Move struct {
	Wagon   Wagon    `json:"wagon"`
	From    RailName `json:"from"`
	To      RailName `json:"to"`
	Main    []Wagon  `json:"main"`
	Siding  []Wagon  `json:"siding"`
	Parking []Wagon  `json:"parking"`
}

// ActionRecord is a Move stamped with its sequence number.
// Records are appended once and never mutated.
type ActionRecord struct {
	Seq int64 `json:"seq"`
	Move
}

// RunStatus is the lifecycle state of a persisted run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is the persisted summary of one sort.
type Run struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Parking       []Wagon          `json:"parking"` // bottom to accessible end, as loaded
	Targets       []Wagon          `json:"targets"`
	Decisions     DecisionSequence `json:"decisions"`
	Status        RunStatus        `json:"status"`
	MoveCount     int              `json:"move_count"`
	DecisionsUsed int              `json:"decisions_used"`
	Main          []Wagon          `json:"main"` // first pushed to last pushed
	Digest        string           `json:"digest,omitempty"`
	Error         string           `json:"error,omitempty"`
	EngineVersion string           `json:"engine_version"`
	IRVersion     string           `json:"ir_version"`
}

// YardSpec is a compiled yard definition.
type YardSpec struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Parking     []Wagon          `json:"parking"` // bottom to accessible end
	Decisions   DecisionSequence `json:"decisions,omitempty"`
	// Search asks for the plan to be computed instead of using Decisions.
	Search bool `json:"search,omitempty"`
}
