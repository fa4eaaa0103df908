package model

import "time"

// SubClaim is a decomposition of a claim into a narrower assertion
type SubClaim struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"` // e.g., "numerical", "temporal", "attributional"
}

// EvidenceItem is a retrieved source excerpt with a quality tier,
// optionally tied to a sub-claim
type EvidenceItem struct {
	ID         string  `json:"id"`
	SubClaimID string  `json:"sub_claim_id,omitempty"` // May reference a sub-claim that never arrives
	Service    string  `json:"service,omitempty"`      // Data service that produced it (e.g., "edgar", "sonar_web")
	Source     string  `json:"source,omitempty"`       // Document or URL identifier
	Excerpt    string  `json:"excerpt,omitempty"`
	Tier       string  `json:"tier,omitempty"` // Quality tier (e.g., "primary", "secondary")
	Stance     string  `json:"stance,omitempty"` // "supports", "refutes", "neutral"
	Relevance  float64 `json:"relevance,omitempty"`
}

// ContradictionItem records a detected contradiction between sources or
// between a claim and the evidence
type ContradictionItem struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	SourceA     string `json:"source_a,omitempty"`
	SourceB     string `json:"source_b,omitempty"`
	Severity    string `json:"severity,omitempty"` // "info", "warning", "critical"
}

// ConsistencyIssue records an internal consistency problem
type ConsistencyIssue struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Severity    string `json:"severity,omitempty"`
}

// PlausibilityAssessment is the backend's plausibility judgment
type PlausibilityAssessment struct {
	Rating     string  `json:"rating"` // e.g., "plausible", "implausible", "uncertain"
	Rationale  string  `json:"rationale,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// MaterialityAssessment is the backend's materiality judgment
type MaterialityAssessment struct {
	Material  bool   `json:"material"`
	Rating    string `json:"rating,omitempty"`
	Rationale string `json:"rationale,omitempty"`
}

// RiskSignal is one red flag surfaced by the backend
type RiskSignal struct {
	Type        string `json:"type"`
	Severity    string `json:"severity,omitempty"` // "info", "warning", "critical"
	Description string `json:"description"`
}

// RiskSignals aggregates the red flags for a claim
type RiskSignals struct {
	Signals []RiskSignal `json:"signals"`
}

// Reconciliation records how conflicting figures were reconciled
type Reconciliation struct {
	Notes    string `json:"notes"`
	Resolved bool   `json:"resolved"`
}

// CorrectedClaim is the backend's proposed correction of the claim wording
type CorrectedClaim struct {
	Text    string   `json:"text"`
	Changes []string `json:"changes,omitempty"`
}

// OverallVerdict is the terminal result of a verification run.
// Its presence on a state signals pipeline completion for that claim.
type OverallVerdict struct {
	Verdict         string  `json:"verdict"` // e.g., "supported", "refuted", "unverifiable"
	Confidence      float64 `json:"confidence,omitempty"`
	Summary         string  `json:"summary,omitempty"`
	TotalDurationMs int64   `json:"total_duration_ms,omitempty"` // Authoritative backend elapsed time
	TotalSources    int     `json:"total_sources,omitempty"`     // Authoritative backend source count
}

// ProvenanceNode is one hop in the chain tracing how a claim's wording
// mutated from an original source to its current form
type ProvenanceNode struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Source  string `json:"source,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
}

// ProvenanceEdge links two provenance nodes
type ProvenanceEdge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation,omitempty"` // e.g., "quoted", "paraphrased", "aggregated"
}

// ReasoningMessage is one append-only entry in the per-claim reasoning log
type ReasoningMessage struct {
	Agent     string    `json:"agent"`
	Stage     string    `json:"stage,omitempty"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// VerificationState is the accumulated verification record for one claim.
// It is created empty when verification starts and mutated additively by
// the reducer; nothing is ever removed during a run.
type VerificationState struct {
	SubClaims         []SubClaim              `json:"sub_claims,omitempty"`
	Evidence          []EvidenceItem          `json:"evidence,omitempty"`
	Contradictions    []ContradictionItem     `json:"contradictions,omitempty"`
	ConsistencyIssues []ConsistencyIssue      `json:"consistency_issues,omitempty"`
	Plausibility      *PlausibilityAssessment `json:"plausibility,omitempty"`
	Materiality       *MaterialityAssessment  `json:"materiality,omitempty"`
	RiskSignals       *RiskSignals            `json:"risk_signals,omitempty"`
	Reconciliation    *Reconciliation         `json:"reconciliation,omitempty"`
	CorrectedClaim    *CorrectedClaim         `json:"corrected_claim,omitempty"`
	OverallVerdict    *OverallVerdict         `json:"overall_verdict,omitempty"`
	Provenance        []ProvenanceNode        `json:"provenance,omitempty"`
	ProvenanceEdges   []ProvenanceEdge        `json:"provenance_edges,omitempty"`
	Reasoning         []ReasoningMessage      `json:"reasoning,omitempty"`

	CurrentStep    string          `json:"current_step,omitempty"`    // Most recently started, not-yet-completed step
	CompletedSteps map[string]bool `json:"completed_steps,omitempty"` // Grows monotonically; insertion order irrelevant

	TotalDurationMs int64 `json:"total_duration_ms,omitempty"` // Terminal stats, set on overall verdict
	TotalSources    int   `json:"total_sources,omitempty"`
}

// NewVerificationState returns an empty state ready for a fresh run
func NewVerificationState() *VerificationState {
	return &VerificationState{
		CompletedSteps: make(map[string]bool),
	}
}

// Completed reports whether the given step has finished
func (s *VerificationState) Completed(step string) bool {
	return s.CompletedSteps[step]
}

// UnassignedEvidence returns evidence items whose sub-claim reference does
// not match any accumulated sub-claim. Items in this bucket are permanent:
// they are never retroactively re-linked if the sub-claim arrives later.
func (s *VerificationState) UnassignedEvidence() []EvidenceItem {
	known := make(map[string]bool, len(s.SubClaims))
	for _, sc := range s.SubClaims {
		known[sc.ID] = true
	}
	var out []EvidenceItem
	for _, ev := range s.Evidence {
		if ev.SubClaimID != "" && !known[ev.SubClaimID] {
			out = append(out, ev)
		}
	}
	return out
}

// Clone returns a deep copy, safe for rendering consumers to hold while
// the live state keeps changing
func (s *VerificationState) Clone() *VerificationState {
	if s == nil {
		return nil
	}
	out := *s
	out.SubClaims = append([]SubClaim(nil), s.SubClaims...)
	out.Evidence = append([]EvidenceItem(nil), s.Evidence...)
	out.Contradictions = append([]ContradictionItem(nil), s.Contradictions...)
	out.ConsistencyIssues = append([]ConsistencyIssue(nil), s.ConsistencyIssues...)
	out.Provenance = append([]ProvenanceNode(nil), s.Provenance...)
	out.ProvenanceEdges = append([]ProvenanceEdge(nil), s.ProvenanceEdges...)
	out.Reasoning = append([]ReasoningMessage(nil), s.Reasoning...)
	out.CompletedSteps = make(map[string]bool, len(s.CompletedSteps))
	for k, v := range s.CompletedSteps {
		out.CompletedSteps[k] = v
	}
	if s.Plausibility != nil {
		p := *s.Plausibility
		out.Plausibility = &p
	}
	if s.Materiality != nil {
		m := *s.Materiality
		out.Materiality = &m
	}
	if s.RiskSignals != nil {
		rs := RiskSignals{Signals: append([]RiskSignal(nil), s.RiskSignals.Signals...)}
		out.RiskSignals = &rs
	}
	if s.Reconciliation != nil {
		r := *s.Reconciliation
		out.Reconciliation = &r
	}
	if s.CorrectedClaim != nil {
		c := *s.CorrectedClaim
		c.Changes = append([]string(nil), s.CorrectedClaim.Changes...)
		out.CorrectedClaim = &c
	}
	if s.OverallVerdict != nil {
		v := *s.OverallVerdict
		out.OverallVerdict = &v
	}
	return &out
}
