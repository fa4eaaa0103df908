package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/veristream/internal/agentmap"
	"github.com/ppiankov/veristream/internal/export"
	"github.com/ppiankov/veristream/internal/ingress"
	"github.com/ppiankov/veristream/internal/llm"
	"github.com/ppiankov/veristream/internal/model"
	"github.com/ppiankov/veristream/internal/registry"
	"github.com/ppiankov/veristream/internal/store"
	"github.com/ppiankov/veristream/internal/worker"
)

var (
	claimsPath  string
	eventPaths  []string
	outDir      string
	writeMD     bool
	noFooter    bool
	timeout     time.Duration
	idleTimeout time.Duration
	saveReport  bool
	reportID    string
	reportTitle string
	sourceURL   string
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay a verification event stream and build per-claim reports",
	Long: `Verify registers the claims from a claims file, starts an independent
verification run per claim, and replays one or more recorded backend event
streams (NDJSON, one event per line) against them. With no --events flag
the stream is read from stdin.

Each stream file must carry a disjoint set of claims: ordering is
guaranteed per claim within a stream, not across streams.

Example:
  veristream verify --claims claims.json --events run.ndjson --out-dir reports
  cat run.ndjson | veristream verify --claims claims.json
  veristream verify --claims claims.json --events run.ndjson --save --title "Q3 filing check"`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&claimsPath, "claims", "", "claims file (JSON array) [required]")
	verifyCmd.Flags().StringSliceVar(&eventPaths, "events", nil, "recorded event stream file(s); stdin when omitted")
	verifyCmd.Flags().StringVar(&outDir, "out-dir", "reports", "output directory for per-claim reports")
	verifyCmd.Flags().BoolVar(&writeMD, "md", true, "write Markdown reports alongside JSON")
	verifyCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	verifyCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall verification timeout")
	verifyCmd.Flags().DurationVar(&idleTimeout, "idle-timeout", 2*time.Minute, "per-claim stalled-pipeline cutoff (0 disables)")

	verifyCmd.Flags().BoolVar(&saveReport, "save", false, "persist the report record for later retrieval")
	verifyCmd.Flags().StringVar(&reportID, "report-id", "", "report identifier (generated when empty)")
	verifyCmd.Flags().StringVar(&reportTitle, "title", "", "report title")
	verifyCmd.Flags().StringVar(&sourceURL, "source-url", "", "URL of the analyzed content")

	verifyCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM share-summary generation")
	verifyCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai)")
	verifyCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")

	_ = verifyCmd.MarkFlagRequired("claims")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Ingest.IdleTimeout = idleTimeout
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	claims, err := loadClaims(claimsPath)
	if err != nil {
		return fmt.Errorf("load claims: %w", err)
	}
	if len(claims) == 0 {
		return fmt.Errorf("claims file %s contains no claims", claimsPath)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Claims: %d\n", len(claims))
		fmt.Fprintf(os.Stderr, "Streams: %d\n", len(eventPaths))
		fmt.Fprintf(os.Stderr, "Idle timeout: %v\n", idleTimeout)
		fmt.Fprintln(os.Stderr)
	}

	diag := logf()
	steps := agentmap.New()
	reg := registry.New(steps, diag)
	for _, claim := range claims {
		if err := reg.Register(claim); err != nil {
			return fmt.Errorf("register claims: %w", err)
		}
	}
	for _, claim := range claims {
		reg.StartVerification(claim.ID)
	}

	// Replay the stream(s)
	session := ingress.NewSession(reg, cfg.Ingest, diag)
	if len(eventPaths) == 0 {
		if err := session.Replay(ctx, os.Stdin); err != nil {
			session.Close()
			return fmt.Errorf("replay stdin: %w", err)
		}
	} else {
		for _, res := range worker.ReplayStreams(ctx, session, eventPaths, cfg.Concurrency.ReplayWorkers) {
			if res.Error != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", res.Error)
			}
		}
	}
	session.Close()

	records := reg.Snapshots()

	// Optional LLM share summaries (presentation only, after the fact)
	summarizer, err := buildSummarizer(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	renderer := export.NewRenderer(cfg.Output.IncludeFooter)

	for _, rec := range records {
		doc := export.BuildDocument(rec)
		if summarizer.IsEnabled() {
			summary, err := summarizer.GenerateShareSummary(ctx, doc, export.EvidenceSources(rec))
			if err != nil {
				// Don't fail the run, just warn
				fmt.Fprintf(os.Stderr, "Warning: LLM summary for %s failed: %v\n", rec.Claim.ID, err)
			} else {
				doc.LLMSummary = summary
			}
		}

		jsonPath := filepath.Join(outDir, rec.Claim.ID+".json")
		if err := renderer.RenderJSON(doc, jsonPath); err != nil {
			return fmt.Errorf("render %s: %w", rec.Claim.ID, err)
		}
		if writeMD {
			mdPath := filepath.Join(outDir, rec.Claim.ID+".md")
			if err := renderer.RenderMarkdown(rec, mdPath); err != nil {
				return fmt.Errorf("render %s: %w", rec.Claim.ID, err)
			}
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote report: %s\n", jsonPath)
		}
	}

	if saveReport {
		id := reportID
		if id == "" {
			id = "rep-" + uuid.New().String()
		}
		if err := persistReport(cfg, id, records); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		fmt.Printf("✓ Saved report: %s\n", id)
	}

	renderer.RenderSummary(os.Stdout, records)
	return nil
}

// loadClaims reads a JSON array of claims from a file
func loadClaims(path string) ([]model.Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var claims []model.Claim
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for i, c := range claims {
		if c.ID == "" {
			return nil, fmt.Errorf("claim %d has no id", i)
		}
	}
	return claims, nil
}

// buildSummarizer wires the optional LLM provider from flags + environment
func buildSummarizer(cfg *model.Config) (*llm.Summarizer, error) {
	if !llmEnabled {
		return nil, nil
	}

	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	return summarizer, nil
}

// persistReport writes the report record through the layered store
func persistReport(cfg *model.Config, id string, records []model.ClaimRecord) error {
	dir, err := storeDir(cfg.Store.Dir)
	if err != nil {
		return err
	}
	backend := store.NewLayeredBackend(cfg.Store.MemoryTTL, dir, cfg.Store.DiskTTL)
	reports := store.NewReportStore(backend)
	return reports.Save(&model.ReportRecord{
		ID:        id,
		Title:     reportTitle,
		SourceURL: sourceURL,
		Claims:    records,
	})
}
