// Package llm generates optional share summaries for exported verification
// documents. Summaries are presentation-only: they never affect the
// verdict, the verification state, or the derived stats.
package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/veristream/internal/export"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a share summary under strict evidence mode
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for summary generation
type SummarizeRequest struct {
	// Document is the exported claim verification to summarize
	Document export.Document

	// EvidenceSources is the STRICT allowlist of sources the LLM can cite.
	// The LLM must not reference anything outside this list.
	EvidenceSources []string

	// Prompt overrides the default prompt when non-empty
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the generated summary
type SummarizeResponse struct {
	// Summary is the generated text
	Summary string

	// Model is the model that produced it
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// RequestsPerSecond caps outbound calls (0 = 1 rps)
	RequestsPerSecond float64

	// Burst for the rate limiter
	Burst int
}

// BuildPrompt constructs the default strict-evidence prompt
func BuildPrompt(doc export.Document, sources []string) string {
	prompt := fmt.Sprintf(`You are summarizing a financial claim verification record. The verdict was produced by an external verification pipeline - you must describe it, never second-guess it.

CRITICAL RULES:
1. You MUST ONLY cite sources from this allowed list:
%s

2. DO NOT infer, speculate, or cite anything beyond this list.
3. If evidence is thin or contradictory, say so explicitly.
4. Describe what the pipeline found; never assert truth yourself.

Verification record:
- Claim: %s
- Verdict: %s (confidence %.2f)
- Sub-claims checked: %d
- Evidence items: %d
- Contradictions found: %d
`, joinSources(sources), doc.Claim, doc.Verdict, doc.Confidence,
		doc.SubClaimCount, doc.EvidenceCount, doc.ContradictionCount)

	for i, flag := range doc.RedFlags {
		if i >= 3 {
			break
		}
		prompt += fmt.Sprintf("- Red flag: %s\n", flag)
	}

	prompt += "\nProvide a 3-4 sentence summary of what the verification found."
	return prompt
}

func joinSources(sources []string) string {
	if len(sources) == 0 {
		return "(No evidence sources available)"
	}
	result := ""
	for i, src := range sources {
		if i >= 20 { // Cap the allowlist to avoid token bloat
			result += fmt.Sprintf("\n... and %d more sources", len(sources)-20)
			break
		}
		result += fmt.Sprintf("\n- %s", src)
	}
	return result
}
