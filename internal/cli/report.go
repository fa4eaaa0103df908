package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/veristream/internal/export"
	"github.com/ppiankov/veristream/internal/model"
	"github.com/ppiankov/veristream/internal/store"
)

var (
	reportOutDir string
	reportMD     bool
)

// reportCmd groups report-store subcommands
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Manage saved verification reports",
}

// reportListCmd lists saved report records
var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, err := openReportStore()
		if err != nil {
			return err
		}
		ids, err := reports.List()
		if err != nil {
			return fmt.Errorf("list reports: %w", err)
		}
		if len(ids) == 0 {
			fmt.Println("No saved reports.")
			return nil
		}
		for _, id := range ids {
			rec, err := reports.Load(id)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: load %s: %v\n", id, err)
				continue
			}
			title := rec.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%-40s %-30s claims=%d  %s\n",
				rec.ID, title, len(rec.Claims), rec.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

// reportShowCmd re-renders one saved report
var reportShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved report",
	Long: `Show prints a console summary of a saved report. With --out-dir the
per-claim JSON (and optionally Markdown) documents are regenerated from
the stored snapshots.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, err := openReportStore()
		if err != nil {
			return err
		}
		rec, err := reports.Load(args[0])
		if err != nil {
			return fmt.Errorf("load report %s: %w", args[0], err)
		}

		fmt.Printf("Report: %s\n", rec.ID)
		if rec.Title != "" {
			fmt.Printf("Title: %s\n", rec.Title)
		}
		if rec.SourceURL != "" {
			fmt.Printf("Source: %s\n", rec.SourceURL)
		}
		fmt.Printf("Created: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))

		renderer := export.NewRenderer(true)
		if reportOutDir != "" {
			if err := os.MkdirAll(reportOutDir, 0755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			for _, claim := range rec.Claims {
				doc := export.BuildDocument(claim)
				jsonPath := filepath.Join(reportOutDir, claim.Claim.ID+".json")
				if err := renderer.RenderJSON(doc, jsonPath); err != nil {
					return fmt.Errorf("render %s: %w", claim.Claim.ID, err)
				}
				if reportMD {
					mdPath := filepath.Join(reportOutDir, claim.Claim.ID+".md")
					if err := renderer.RenderMarkdown(claim, mdPath); err != nil {
						return fmt.Errorf("render %s: %w", claim.Claim.ID, err)
					}
				}
			}
			fmt.Printf("Wrote %d report(s) to %s\n", len(rec.Claims), reportOutDir)
		}

		renderer.RenderSummary(os.Stdout, rec.Claims)
		return nil
	},
}

// reportDeleteCmd removes a saved report
var reportDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, err := openReportStore()
		if err != nil {
			return err
		}
		if err := reports.Delete(args[0]); err != nil {
			return fmt.Errorf("delete report %s: %w", args[0], err)
		}
		fmt.Printf("✓ Deleted report: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportDeleteCmd)

	reportShowCmd.Flags().StringVar(&reportOutDir, "out-dir", "", "regenerate per-claim documents into this directory")
	reportShowCmd.Flags().BoolVar(&reportMD, "md", true, "write Markdown alongside JSON when --out-dir is set")
}

// openReportStore opens the layered report store at the configured directory
func openReportStore() (*store.ReportStore, error) {
	cfg := model.DefaultConfig()
	dir, err := storeDir(cfg.Store.Dir)
	if err != nil {
		return nil, err
	}
	backend := store.NewLayeredBackend(cfg.Store.MemoryTTL, dir, cfg.Store.DiskTTL)
	return store.NewReportStore(backend), nil
}
