package model

// ProofNodeType classifies nodes in the symbolic proof tree
type ProofNodeType string

const (
	ProofClaim     ProofNodeType = "claim"
	ProofPremise   ProofNodeType = "premise"
	ProofEvidence  ProofNodeType = "evidence"
	ProofRule      ProofNodeType = "rule"
	ProofInference ProofNodeType = "inference"
	ProofVerdict   ProofNodeType = "verdict"
)

// ProofNode is one node in the reasoning graph explaining how a verdict was
// derived. Children are referenced by id, not by pointer, so the whole tree
// stays a flat lookup table and serializes trivially.
type ProofNode struct {
	ID         string        `json:"id"`
	Type       ProofNodeType `json:"type"`
	Label      string        `json:"label"`
	Detail     string        `json:"detail,omitempty"`
	Status     string        `json:"status,omitempty"` // e.g., "satisfied", "violated", "open"
	Confidence float64       `json:"confidence,omitempty"` // In [0,1]
	Children   []string      `json:"children,omitempty"`   // Child node ids, ordered
}

// ProofTree is the serializable snapshot of a proof graph: all nodes keyed
// by id, their insertion order, and the single verdict root.
type ProofTree struct {
	Nodes map[string]ProofNode `json:"nodes,omitempty"`
	Order []string             `json:"order,omitempty"` // Node ids in arrival order
	Root  string               `json:"root,omitempty"`  // Id of the verdict node, if one arrived
}
