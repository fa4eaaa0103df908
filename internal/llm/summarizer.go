package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/veristream/internal/export"
	"github.com/ppiankov/veristream/internal/model"
)

// urlPattern finds URL-shaped citations in generated summaries
var urlPattern = regexp.MustCompile(`https?://[^\s)\]]+`)

// Summarizer generates share summaries through a configured provider
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer, or an error if the provider is
// misconfigured. A disabled config yields a summarizer whose IsEnabled
// reports false.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether summary generation is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// GenerateShareSummary produces an LLM summary for one exported claim
// document. The summary carries warnings for any citation outside the
// evidence allowlist; it never feeds back into verification state.
func (s *Summarizer) GenerateShareSummary(ctx context.Context, doc export.Document, sources []string) (*model.LLMShareSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Document:        doc,
		EvidenceSources: sources,
		Model:           s.config.Model,
		MaxTokens:       s.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	summary := &model.LLMShareSummary{
		Enabled:   true,
		Provider:  s.provider.Name(),
		Model:     resp.Model,
		SummaryMD: resp.Summary,
		Warnings:  detectCitationLeaks(resp.Summary, sources),
	}
	return summary, nil
}

// detectCitationLeaks flags URL citations that are not in the allowlist
func detectCitationLeaks(summary string, allowed []string) []string {
	allowedSet := make(map[string]bool, len(allowed))
	for _, src := range allowed {
		allowedSet[strings.TrimRight(src, "/")] = true
	}

	var warnings []string
	for _, cited := range urlPattern.FindAllString(summary, -1) {
		cited = strings.TrimRight(cited, ".,;")
		if !allowedSet[strings.TrimRight(cited, "/")] {
			warnings = append(warnings, fmt.Sprintf("citation outside evidence allowlist: %s", cited))
		}
	}
	return warnings
}
