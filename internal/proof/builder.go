// Package proof assembles the symbolic proof tree for a claim from
// predicate, rule-firing, proof-node, and verdict events.
//
// Nodes live in one lookup table keyed by id and reference children by id
// lists (arena+index), so the structure cannot form pointer cycles and
// serializes directly. Structural violations (duplicate ids, edges that
// would create a cycle, a second verdict) are logged and ignored at the
// point of insertion; accumulated state is never corrupted.
package proof

import (
	"encoding/json"
	"fmt"

	"github.com/ppiankov/veristream/internal/model"
)

// Builder incrementally builds one claim's proof node table
type Builder struct {
	nodes map[string]*model.ProofNode
	order []string
	root  string
	logf  model.Logf
}

// New creates an empty builder
func New(logf model.Logf) *Builder {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Builder{
		nodes: make(map[string]*model.ProofNode),
		logf:  logf,
	}
}

// predicatePayload declares a premise or evidence predicate
type predicatePayload struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Detail     string  `json:"detail,omitempty"`
	Kind       string  `json:"kind,omitempty"` // "premise" (default) or "evidence"
	Status     string  `json:"status,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// ruleFiringPayload records one inference-rule application
type ruleFiringPayload struct {
	ID         string   `json:"id"`
	Rule       string   `json:"rule"`
	Detail     string   `json:"detail,omitempty"`
	Parent     string   `json:"parent,omitempty"`   // Existing node to attach the inference under
	Children   []string `json:"children,omitempty"` // Premise/evidence node ids consumed by the rule
	Status     string   `json:"status,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
}

// verdictPayload mirrors the overall-verdict fields the tree cares about
type verdictPayload struct {
	Verdict    string  `json:"verdict"`
	Summary    string  `json:"summary,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Apply consumes one event. Non-proof events are ignored.
func (b *Builder) Apply(ev model.Event) {
	switch ev.Kind {
	case model.EventProofNode:
		var node model.ProofNode
		if err := json.Unmarshal(ev.Payload, &node); err != nil {
			b.logf("claim %s: malformed proof-node payload ignored: %v", ev.ClaimID, err)
			return
		}
		b.insert(ev.ClaimID, node)

	case model.EventPredicate:
		var p predicatePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			b.logf("claim %s: malformed predicate payload ignored: %v", ev.ClaimID, err)
			return
		}
		nodeType := model.ProofPremise
		if p.Kind == "evidence" {
			nodeType = model.ProofEvidence
		}
		b.insert(ev.ClaimID, model.ProofNode{
			ID:         p.ID,
			Type:       nodeType,
			Label:      p.Name,
			Detail:     p.Detail,
			Status:     p.Status,
			Confidence: clamp01(p.Confidence),
		})

	case model.EventRuleFiring:
		var rf ruleFiringPayload
		if err := json.Unmarshal(ev.Payload, &rf); err != nil {
			b.logf("claim %s: malformed rule-firing payload ignored: %v", ev.ClaimID, err)
			return
		}
		if !b.insert(ev.ClaimID, model.ProofNode{
			ID:         rf.ID,
			Type:       model.ProofInference,
			Label:      rf.Rule,
			Detail:     rf.Detail,
			Status:     rf.Status,
			Confidence: clamp01(rf.Confidence),
			Children:   rf.Children,
		}) {
			return
		}
		if rf.Parent != "" {
			b.attach(ev.ClaimID, rf.Parent, rf.ID)
		}

	case model.EventOverallVerdict:
		var v verdictPayload
		if err := json.Unmarshal(ev.Payload, &v); err != nil {
			b.logf("claim %s: malformed verdict payload ignored by proof builder: %v", ev.ClaimID, err)
			return
		}
		if b.root != "" {
			b.logf("claim %s: second verdict node rejected, root %q stands", ev.ClaimID, b.root)
			return
		}
		// The verdict becomes the single root: every currently parentless
		// node hangs off it, in arrival order, so rendering clients get one
		// rooted traversal. A backend node squatting on the id "verdict"
		// must not block the real root, so the id is made unique.
		node := model.ProofNode{
			ID:         b.verdictID(),
			Type:       model.ProofVerdict,
			Label:      v.Verdict,
			Detail:     v.Summary,
			Confidence: clamp01(v.Confidence),
			Children:   b.parentless(),
		}
		b.insert(ev.ClaimID, node)
	}
}

// verdictID returns "verdict", or the first free "verdict-N" variant when
// another node already claimed the plain id
func (b *Builder) verdictID() string {
	id := "verdict"
	for n := 2; ; n++ {
		if _, taken := b.nodes[id]; !taken {
			return id
		}
		id = fmt.Sprintf("verdict-%d", n)
	}
}

// insert adds a node to the arena, rejecting duplicate ids, self-cycles,
// and any verdict-typed node once a root exists. A successfully inserted
// verdict-typed node becomes the root.
func (b *Builder) insert(claimID string, node model.ProofNode) bool {
	if node.ID == "" {
		b.logf("claim %s: proof node without id rejected", claimID)
		return false
	}
	if node.Type == model.ProofVerdict && b.root != "" {
		b.logf("claim %s: second verdict node %q rejected, root %q stands", claimID, node.ID, b.root)
		return false
	}
	if _, exists := b.nodes[node.ID]; exists {
		b.logf("claim %s: duplicate proof node id %q rejected", claimID, node.ID)
		return false
	}
	for _, child := range node.Children {
		if child == node.ID || b.reaches(child, node.ID) {
			b.logf("claim %s: proof node %q rejected, child %q would create a cycle", claimID, node.ID, child)
			return false
		}
	}
	n := node
	b.nodes[n.ID] = &n
	b.order = append(b.order, n.ID)
	if n.Type == model.ProofVerdict {
		b.root = n.ID
	}
	return true
}

// attach appends child to parent's child list, rejecting unknown parents,
// duplicate edges, and edges that would close a cycle
func (b *Builder) attach(claimID, parentID, childID string) {
	parent, ok := b.nodes[parentID]
	if !ok {
		b.logf("claim %s: attach to unknown proof node %q ignored", claimID, parentID)
		return
	}
	for _, c := range parent.Children {
		if c == childID {
			return // Duplicate edge, no-op
		}
	}
	if childID == parentID || b.reaches(childID, parentID) {
		b.logf("claim %s: edge %q -> %q rejected, would create a cycle", claimID, parentID, childID)
		return
	}
	parent.Children = append(parent.Children, childID)
}

// reaches reports whether target is reachable from start via child edges.
// Dangling child ids (nodes not yet arrived) terminate the walk.
func (b *Builder) reaches(start, target string) bool {
	if start == target {
		return true
	}
	seen := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := b.nodes[id]
		if !ok {
			continue
		}
		for _, child := range node.Children {
			if child == target {
				return true
			}
			if !seen[child] {
				seen[child] = true
				stack = append(stack, child)
			}
		}
	}
	return false
}

// parentless returns ids of nodes that no other node references, in
// arrival order
func (b *Builder) parentless() []string {
	referenced := make(map[string]bool)
	for _, node := range b.nodes {
		for _, c := range node.Children {
			referenced[c] = true
		}
	}
	var out []string
	for _, id := range b.order {
		if !referenced[id] {
			out = append(out, id)
		}
	}
	return out
}

// Root returns the verdict node id, or "" before the verdict arrives
func (b *Builder) Root() string {
	return b.root
}

// Len returns the number of accepted nodes
func (b *Builder) Len() int {
	return len(b.nodes)
}

// Tree returns a deep-copied serializable snapshot of the proof graph
func (b *Builder) Tree() model.ProofTree {
	if len(b.nodes) == 0 {
		return model.ProofTree{}
	}
	nodes := make(map[string]model.ProofNode, len(b.nodes))
	for id, node := range b.nodes {
		n := *node
		n.Children = append([]string(nil), node.Children...)
		nodes[id] = n
	}
	return model.ProofTree{
		Nodes: nodes,
		Order: append([]string(nil), b.order...),
		Root:  b.root,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
