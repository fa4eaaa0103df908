// Package export builds shareable documents from verification snapshots.
// Documents are derived on demand from registry snapshots, never from live
// state.
package export

import (
	"time"

	"github.com/ppiankov/veristream/internal/model"
)

// Document is the JSON summary of one claim's verification, produced for
// sharing
type Document struct {
	ClaimID            string             `json:"claim_id"`
	Claim              string             `json:"claim"`
	Status             model.ClaimStatus  `json:"status"`
	Verdict            string             `json:"verdict,omitempty"`
	Confidence         float64            `json:"confidence,omitempty"`
	Summary            string             `json:"summary,omitempty"`
	SubClaimCount      int                `json:"sub_claim_count"`
	EvidenceCount      int                `json:"evidence_count"`
	ContradictionCount int                `json:"contradiction_count"`
	CorrectedClaim     string             `json:"corrected_claim,omitempty"`
	RedFlags           []string           `json:"red_flags,omitempty"`
	Stats              model.PipelineStats `json:"stats"`
	GeneratedAt        time.Time          `json:"generated_at"`
	LLMSummary         *model.LLMShareSummary `json:"llm_summary,omitempty"`
}

// BuildDocument derives a share document from a claim snapshot
func BuildDocument(rec model.ClaimRecord) Document {
	doc := Document{
		ClaimID:            rec.Claim.ID,
		Claim:              rec.Claim.Text,
		Status:             rec.Claim.Status,
		SubClaimCount:      len(rec.State.SubClaims),
		EvidenceCount:      len(rec.State.Evidence),
		ContradictionCount: len(rec.State.Contradictions),
		Stats:              rec.Stats,
		GeneratedAt:        time.Now().UTC(),
	}

	if v := rec.State.OverallVerdict; v != nil {
		doc.Verdict = v.Verdict
		doc.Confidence = v.Confidence
		doc.Summary = v.Summary
	}
	if cc := rec.State.CorrectedClaim; cc != nil {
		doc.CorrectedClaim = cc.Text
	}
	if rs := rec.State.RiskSignals; rs != nil {
		for _, sig := range rs.Signals {
			if sig.Severity == "critical" || sig.Severity == "warning" {
				doc.RedFlags = append(doc.RedFlags, sig.Description)
			}
		}
	}
	return doc
}

// EvidenceSources returns the distinct source identifiers cited by the
// snapshot's evidence, in first-seen order. Used as the strict allowlist
// for LLM share summaries.
func EvidenceSources(rec model.ClaimRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ev := range rec.State.Evidence {
		if ev.Source == "" || seen[ev.Source] {
			continue
		}
		seen[ev.Source] = true
		out = append(out, ev.Source)
	}
	return out
}
