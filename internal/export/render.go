package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/veristream/internal/model"
)

// Renderer writes documents and markdown reports to files and a console
// summary to stdout
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the share document as indented JSON
func (r *Renderer) RenderJSON(doc Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes a full per-claim verification report
func (r *Renderer) RenderMarkdown(rec model.ClaimRecord, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Claim Verification: %s\n\n", rec.Claim.ID)
	fmt.Fprintf(&b, "> %s\n\n", rec.Claim.Text)
	fmt.Fprintf(&b, "- **Status**: %s\n", rec.Claim.Status)
	if v := rec.State.OverallVerdict; v != nil {
		fmt.Fprintf(&b, "- **Verdict**: %s (confidence %.2f)\n", v.Verdict, v.Confidence)
		if v.Summary != "" {
			fmt.Fprintf(&b, "- **Summary**: %s\n", v.Summary)
		}
	}
	if cc := rec.State.CorrectedClaim; cc != nil {
		fmt.Fprintf(&b, "- **Corrected claim**: %s\n", cc.Text)
	}
	b.WriteString("\n")

	if len(rec.Chips) > 0 {
		b.WriteString("## Agents\n\n")
		b.WriteString("| Agent | Service | Status |\n|---|---|---|\n")
		for _, chip := range rec.Chips {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", chip.Label, chip.Service, chip.Status)
		}
		b.WriteString("\n")
	}

	if len(rec.State.SubClaims) > 0 {
		b.WriteString("## Sub-claims\n\n")
		for _, sc := range rec.State.SubClaims {
			fmt.Fprintf(&b, "- **%s**: %s\n", sc.ID, sc.Text)
		}
		b.WriteString("\n")
	}

	if len(rec.State.Evidence) > 0 {
		b.WriteString("## Evidence\n\n")
		for _, ev := range rec.State.Evidence {
			ref := ev.SubClaimID
			if ref == "" {
				ref = "unassigned"
			}
			fmt.Fprintf(&b, "- [%s] %s (%s, tier %s)", ref, ev.Source, ev.Service, ev.Tier)
			if ev.Excerpt != "" {
				fmt.Fprintf(&b, ": %q", ev.Excerpt)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(rec.State.Contradictions) > 0 {
		b.WriteString("## Contradictions\n\n")
		for _, c := range rec.State.Contradictions {
			fmt.Fprintf(&b, "- [%s] %s\n", c.Severity, c.Description)
		}
		b.WriteString("\n")
	}

	if rs := rec.State.RiskSignals; rs != nil && len(rs.Signals) > 0 {
		b.WriteString("## Risk signals\n\n")
		for _, sig := range rs.Signals {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", sig.Severity, sig.Type, sig.Description)
		}
		b.WriteString("\n")
	}

	if len(rec.State.Provenance) > 0 {
		b.WriteString("## Provenance chain\n\n")
		for _, node := range rec.State.Provenance {
			fmt.Fprintf(&b, "- %s (%s)\n", node.Label, node.Source)
		}
		b.WriteString("\n")
	}

	if rec.Proof.Root != "" {
		b.WriteString("## Proof tree\n\n")
		r.writeProofNode(&b, rec.Proof, rec.Proof.Root, 0, map[string]bool{})
		b.WriteString("\n")
	}

	b.WriteString("## Pipeline stats\n\n")
	fmt.Fprintf(&b, "- Steps completed: %d\n", rec.Stats.Steps)
	fmt.Fprintf(&b, "- External API calls: %d\n", rec.Stats.APICalls)
	fmt.Fprintf(&b, "- Services: %s\n", strings.Join(rec.Stats.Services, ", "))
	fmt.Fprintf(&b, "- Sources: %d\n", rec.Stats.Sources)
	fmt.Fprintf(&b, "- Elapsed: %dms\n", rec.Stats.ElapsedMs)

	if r.includeFooter {
		b.WriteString("\n---\nGenerated by veristream. Verdicts come from the verification backend; this report only reconstructs them.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// writeProofNode renders a rooted traversal; the visited set is belt and
// suspenders, the builder already rejects cycles
func (r *Renderer) writeProofNode(b *strings.Builder, tree model.ProofTree, id string, depth int, visited map[string]bool) {
	if visited[id] {
		return
	}
	visited[id] = true
	node, ok := tree.Nodes[id]
	if !ok {
		return
	}
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s- [%s] %s", indent, node.Type, node.Label)
	if node.Confidence > 0 {
		fmt.Fprintf(b, " (%.2f)", node.Confidence)
	}
	b.WriteString("\n")
	for _, child := range node.Children {
		r.writeProofNode(b, tree, child, depth+1, visited)
	}
}

// RenderSummary writes a one-line-per-claim console summary
func (r *Renderer) RenderSummary(w io.Writer, records []model.ClaimRecord) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Verification summary")
	fmt.Fprintln(w, strings.Repeat("-", 20))
	for _, rec := range records {
		verdict := "-"
		if v := rec.State.OverallVerdict; v != nil {
			verdict = v.Verdict
		}
		fmt.Fprintf(w, "%-12s %-10s verdict=%-14s subclaims=%d evidence=%d contradictions=%d\n",
			rec.Claim.ID, rec.Claim.Status, verdict,
			len(rec.State.SubClaims), len(rec.State.Evidence), len(rec.State.Contradictions))
	}
	fmt.Fprintln(w)
}
