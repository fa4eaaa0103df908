package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/veristream/internal/model"
)

func sampleRecord() model.ClaimRecord {
	return model.ClaimRecord{
		Claim: model.Claim{ID: "c1", Text: "Acme revenue rose 12% in Q3", Status: model.ClaimDone},
		State: model.VerificationState{
			SubClaims: []model.SubClaim{{ID: "sc1", Text: "revenue rose", Category: "numerical"}},
			Evidence: []model.EvidenceItem{
				{ID: "e1", SubClaimID: "sc1", Service: "edgar", Source: "https://sec.gov/acme-10q", Tier: "primary"},
				{ID: "e2", Service: "sonar_web", Source: "https://news.example.com/acme"},
			},
			Contradictions: []model.ContradictionItem{{Description: "press release says 10%", Severity: "warning"}},
			RiskSignals: &model.RiskSignals{Signals: []model.RiskSignal{
				{Type: "restatement", Severity: "critical", Description: "prior-period restatement"},
				{Type: "note", Severity: "info", Description: "rounding differences"},
			}},
			CorrectedClaim: &model.CorrectedClaim{Text: "Acme revenue rose 11.8% in Q3"},
			OverallVerdict: &model.OverallVerdict{Verdict: "partially_supported", Confidence: 0.78, Summary: "close but overstated"},
		},
		Chips: []model.AgentChip{
			{ID: model.ChipExtract, Service: "extractor", Label: "Extract", Status: model.ChipDone},
			{ID: model.ChipDecompose, Service: "decomposer", Label: "Decompose", Status: model.ChipDone},
		},
		Stats: model.PipelineStats{Steps: 18, APICalls: 7, Services: []string{"edgar", "sonar_web"}, Sources: 9, ElapsedMs: 41500},
		Proof: model.ProofTree{
			Nodes: map[string]model.ProofNode{
				"p1":      {ID: "p1", Type: model.ProofPremise, Label: "revenue_reported"},
				"verdict": {ID: "verdict", Type: model.ProofVerdict, Label: "partially_supported", Confidence: 0.78, Children: []string{"p1"}},
			},
			Order: []string{"p1", "verdict"},
			Root:  "verdict",
		},
	}
}

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument(sampleRecord())

	if doc.ClaimID != "c1" || doc.Status != model.ClaimDone {
		t.Errorf("doc identity = %s/%s", doc.ClaimID, doc.Status)
	}
	if doc.Verdict != "partially_supported" || doc.Confidence != 0.78 {
		t.Errorf("verdict = %s (%v)", doc.Verdict, doc.Confidence)
	}
	if doc.SubClaimCount != 1 || doc.EvidenceCount != 2 || doc.ContradictionCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/2/1", doc.SubClaimCount, doc.EvidenceCount, doc.ContradictionCount)
	}
	if doc.CorrectedClaim != "Acme revenue rose 11.8% in Q3" {
		t.Errorf("corrected claim = %q", doc.CorrectedClaim)
	}
	// Only warning/critical signals surface as red flags
	if len(doc.RedFlags) != 1 || doc.RedFlags[0] != "prior-period restatement" {
		t.Errorf("red flags = %v, want just the critical one", doc.RedFlags)
	}
	if doc.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not stamped")
	}
}

func TestEvidenceSources(t *testing.T) {
	rec := sampleRecord()
	rec.State.Evidence = append(rec.State.Evidence,
		model.EvidenceItem{ID: "e3", Source: "https://sec.gov/acme-10q"}, // Duplicate
		model.EvidenceItem{ID: "e4"},                                    // No source
	)

	got := EvidenceSources(rec)
	want := []string{"https://sec.gov/acme-10q", "https://news.example.com/acme"}
	if len(got) != len(want) {
		t.Fatalf("sources = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sources = %v, want first-seen order %v", got, want)
			break
		}
	}
}

func TestRenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c1.json")
	if err := NewRenderer(true).RenderJSON(BuildDocument(sampleRecord()), path); err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("written JSON does not parse: %v", err)
	}
	if doc.ClaimID != "c1" {
		t.Errorf("round-tripped claim id = %q", doc.ClaimID)
	}
}

func TestRenderMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c1.md")
	if err := NewRenderer(true).RenderMarkdown(sampleRecord(), path); err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	md := string(data)

	for _, want := range []string{
		"# Claim Verification: c1",
		"partially_supported",
		"## Agents",
		"## Sub-claims",
		"## Evidence",
		"[unassigned]",
		"## Contradictions",
		"## Risk signals",
		"## Proof tree",
		"revenue_reported",
		"## Pipeline stats",
		"Generated by veristream",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdownNoFooter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c1.md")
	if err := NewRenderer(false).RenderMarkdown(sampleRecord(), path); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "Generated by veristream") {
		t.Error("footer rendered despite being disabled")
	}
}

// Console summary stays plain ASCII so it renders the same everywhere
func TestRenderSummaryPlainASCII(t *testing.T) {
	records := []model.ClaimRecord{
		sampleRecord(),
		{Claim: model.Claim{ID: "c2", Text: "no verdict yet", Status: model.ClaimVerifying}},
	}

	var buf bytes.Buffer
	NewRenderer(true).RenderSummary(&buf, records)
	out := buf.String()

	if !strings.Contains(out, "Verification summary") {
		t.Fatalf("summary header missing:\n%s", out)
	}
	if !strings.Contains(out, "c1") || !strings.Contains(out, "c2") {
		t.Errorf("claim lines missing:\n%s", out)
	}
	if !strings.Contains(out, "verdict=-") {
		t.Errorf("placeholder for missing verdict = want %q line:\n%s", "verdict=-", out)
	}
	for _, r := range out {
		if r > 127 {
			t.Fatalf("non-ASCII rune %q in summary output:\n%s", r, out)
		}
	}
}

func TestRenderMarkdownPartialState(t *testing.T) {
	rec := model.ClaimRecord{
		Claim: model.Claim{ID: "c2", Text: "bare claim", Status: model.ClaimError},
	}
	path := filepath.Join(t.TempDir(), "c2.md")
	if err := NewRenderer(true).RenderMarkdown(rec, path); err != nil {
		t.Fatalf("render with empty state: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "error") {
		t.Error("status missing from partial-state report")
	}
}
