package llm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/veristream/internal/export"
)

// fakeProvider returns a canned summary and records the request it saw
type fakeProvider struct {
	summary string
	lastReq SummarizeRequest
	calls   int
}

func (f *fakeProvider) Name() string                         { return "fake" }
func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return true }
func (f *fakeProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	f.lastReq = req
	f.calls++
	return &SummarizeResponse{Summary: f.summary, Model: "fake-model"}, nil
}

func TestNewProviderUnknown(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Error("unknown provider accepted")
	}
}

func TestNewProviderDisabled(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil {
		t.Fatalf("empty provider config: %v", err)
	}
	if p != nil {
		t.Error("empty provider config should disable, not create a provider")
	}
}

func TestSummarizerDisabled(t *testing.T) {
	s, err := NewSummarizer(Config{})
	if err != nil {
		t.Fatalf("new summarizer: %v", err)
	}
	if s.IsEnabled() {
		t.Error("summarizer enabled without a provider")
	}

	var nilSummarizer *Summarizer
	if nilSummarizer.IsEnabled() {
		t.Error("nil summarizer reports enabled")
	}
}

func TestGenerateShareSummary(t *testing.T) {
	fake := &fakeProvider{summary: "The pipeline found support in https://sec.gov/acme-10q for the claim."}
	s := &Summarizer{provider: fake, config: Config{Model: "fake-model", MaxTokens: 500}}

	doc := export.Document{ClaimID: "c1", Claim: "revenue rose 12%", Verdict: "supported"}
	sources := []string{"https://sec.gov/acme-10q"}

	summary, err := s.GenerateShareSummary(context.Background(), doc, sources)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !summary.Enabled || summary.Provider != "fake" || summary.Model != "fake-model" {
		t.Errorf("summary metadata = %+v", summary)
	}
	if summary.SummaryMD == "" {
		t.Error("empty summary text")
	}
	if len(summary.Warnings) != 0 {
		t.Errorf("warnings = %v, cited source is in the allowlist", summary.Warnings)
	}
	if len(fake.lastReq.EvidenceSources) != 1 {
		t.Error("allowlist not forwarded to the provider")
	}
}

func TestCitationLeakDetection(t *testing.T) {
	tests := []struct {
		name     string
		summary  string
		allowed  []string
		warnings int
	}{
		{
			name:    "allowed citation",
			summary: "Confirmed by https://sec.gov/acme-10q filings.",
			allowed: []string{"https://sec.gov/acme-10q"},
		},
		{
			name:    "trailing slash normalized",
			summary: "See https://sec.gov/acme-10q/ for details.",
			allowed: []string{"https://sec.gov/acme-10q"},
		},
		{
			name:     "leaked citation",
			summary:  "Also reported at https://rumors.example.com/hot-take today.",
			allowed:  []string{"https://sec.gov/acme-10q"},
			warnings: 1,
		},
		{
			name:     "mixed",
			summary:  "Per https://sec.gov/acme-10q and https://blog.example.org/post.",
			allowed:  []string{"https://sec.gov/acme-10q"},
			warnings: 1,
		},
		{
			name:    "no urls",
			summary: "The verdict is supported with high confidence.",
			allowed: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectCitationLeaks(tt.summary, tt.allowed)
			if len(got) != tt.warnings {
				t.Errorf("warnings = %v, want %d", got, tt.warnings)
			}
		})
	}
}

func TestBuildPromptStrictEvidence(t *testing.T) {
	doc := export.Document{
		Claim: "revenue rose 12%", Verdict: "supported", Confidence: 0.9,
		SubClaimCount: 2, EvidenceCount: 5, ContradictionCount: 1,
		RedFlags: []string{"flag-a", "flag-b", "flag-c", "flag-d"},
	}
	prompt := BuildPrompt(doc, []string{"https://sec.gov/a", "https://sec.gov/b"})

	for _, want := range []string{"MUST ONLY cite", "https://sec.gov/a", "https://sec.gov/b", "revenue rose 12%", "supported"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	// Red flags capped at three
	if strings.Contains(prompt, "flag-d") {
		t.Error("prompt includes more than three red flags")
	}
}

func TestBuildPromptNoSources(t *testing.T) {
	prompt := BuildPrompt(export.Document{Claim: "x"}, nil)
	if !strings.Contains(prompt, "No evidence sources available") {
		t.Error("empty allowlist not called out in prompt")
	}
}

func TestJoinSourcesCapped(t *testing.T) {
	sources := make([]string, 25)
	for i := range sources {
		sources[i] = "https://example.com/src"
	}
	joined := joinSources(sources)
	if !strings.Contains(joined, "and 5 more sources") {
		t.Errorf("allowlist not capped: %s", joined)
	}
}

func TestRateLimitedProviderDelegates(t *testing.T) {
	fake := &fakeProvider{summary: "ok"}
	limited := NewRateLimited(fake, 100, 2)

	if limited.Name() != "fake" {
		t.Errorf("name = %q, want delegated", limited.Name())
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		if _, err := limited.Summarize(ctx, SummarizeRequest{}); err != nil {
			t.Fatalf("summarize %d: %v", i, err)
		}
	}
	if fake.calls != 3 {
		t.Errorf("delegated calls = %d, want 3", fake.calls)
	}
}

func TestRateLimitedProviderHonorsContext(t *testing.T) {
	fake := &fakeProvider{summary: "ok"}
	// One request per 10 seconds, burst 1: second call must wait
	limited := NewRateLimited(fake, 0.1, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := limited.Summarize(ctx, SummarizeRequest{}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := limited.Summarize(ctx, SummarizeRequest{}); err == nil {
		t.Error("second call should fail waiting on the limiter under a short context")
	}
}
