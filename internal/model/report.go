package model

import "time"

// ClaimRecord is a consistent snapshot of one claim's verification: the
// claim, its accumulated state, chip roster, derived stats, and proof tree.
// Snapshots are copies; the live registry keeps mutating after a read.
type ClaimRecord struct {
	Claim Claim             `json:"claim"`
	State VerificationState `json:"state"`
	Chips []AgentChip       `json:"chips,omitempty"`
	Stats PipelineStats     `json:"stats"`
	Proof ProofTree         `json:"proof,omitempty"`
}

// ReportRecord groups multiple claims with their full verification
// snapshots plus analysis metadata, keyed by a report identifier for
// later retrieval.
type ReportRecord struct {
	ID        string        `json:"id"`
	Title     string        `json:"title,omitempty"`
	SourceURL string        `json:"source_url,omitempty"` // Where the analyzed content came from
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Claims    []ClaimRecord `json:"claims"`
}

// LLMShareSummary is an optional LLM-generated summary attached to an
// exported document. It never affects the verdict, stats, or state.
type LLMShareSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"` // e.g., citation leaks outside the evidence allowlist
}
