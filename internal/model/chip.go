package model

// ChipStatus tracks an agent chip through one verification run.
// Transitions are monotonic: pending -> active -> done, never backwards.
type ChipStatus string

const (
	ChipPending ChipStatus = "pending"
	ChipActive  ChipStatus = "active"
	ChipDone    ChipStatus = "done"
)

// ChipID identifies an agent work-unit in the fixed roster
type ChipID string

const (
	ChipExtract      ChipID = "extract"
	ChipDecompose    ChipID = "decompose"
	ChipNumGround    ChipID = "numground"
	ChipEdgar        ChipID = "edgar"
	ChipSonarWeb     ChipID = "sonar_web"
	ChipTemporal     ChipID = "temporal"
	ChipStaleness    ChipID = "staleness"
	ChipCitations    ChipID = "citations"
	ChipSonarCounter ChipID = "sonar_counter"
	ChipEvaluate     ChipID = "evaluate"
	ChipSynthesize   ChipID = "synthesize"
	ChipProvenance   ChipID = "provenance"
	ChipCorrect      ChipID = "correct"
	ChipSymbolic     ChipID = "symbolic"
)

// AgentChip is a named unit of backend work with a display identity and a
// lifecycle status. Status is driven entirely by pipeline step events.
type AgentChip struct {
	ID      ChipID     `json:"id"`
	Service string     `json:"service"` // Backing service or agent group (e.g., "edgar", "sonar")
	Label   string     `json:"label"`   // Display label
	Color   string     `json:"color"`   // Display color (hex)
	Status  ChipStatus `json:"status"`
}

// ChipRoster is the ordered per-claim set of agent chips
type ChipRoster []*AgentChip

// Chip returns the chip with the given id, or nil if not in the roster
func (r ChipRoster) Chip(id ChipID) *AgentChip {
	for _, c := range r {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Activate moves a chip to active unless it has already finished.
// Returns false if the chip is unknown.
func (r ChipRoster) Activate(id ChipID) bool {
	c := r.Chip(id)
	if c == nil {
		return false
	}
	if c.Status != ChipDone {
		c.Status = ChipActive
	}
	return true
}

// Complete moves a chip to done. Idempotent. Returns false if the chip is unknown.
func (r ChipRoster) Complete(id ChipID) bool {
	c := r.Chip(id)
	if c == nil {
		return false
	}
	c.Status = ChipDone
	return true
}

// Clone returns a deep copy of the roster
func (r ChipRoster) Clone() ChipRoster {
	out := make(ChipRoster, len(r))
	for i, c := range r {
		cc := *c
		out[i] = &cc
	}
	return out
}
