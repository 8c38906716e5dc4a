package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/engine"
	"github.com/IshaanNene/NewsLens/internal/storage"
	"github.com/IshaanNene/NewsLens/internal/types"
)

var (
	analyzeLimit    int
	analyzeSkip     int
	analyzeExternal bool
	analyzeOverview bool
	analyzeAnalysis bool
	analyzeJSON     bool
	analyzeExport   bool
	analyzeFormat   string
	analyzeOutput   string
	analyzeDelay    string
)

// analyzeCmd creates the "analyze" subcommand.
func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [company]",
		Short: "Summarize recent news about a company and tally sentiment",
		Long: `Search for recent articles about the company, summarize each one and label
its sentiment. The external model (--external) is tried first when enabled,
falling back to the local summarizer.

Examples:
  newslens analyze Tesla
  newslens analyze "Reliance Industries" --limit 8 --skip 10
  newslens analyze Tesla --external --overview --export --format jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().IntVarP(&analyzeLimit, "limit", "n", 0, "number of articles (default from config, max 10, 3 with --external)")
	cmd.Flags().IntVar(&analyzeSkip, "skip", 0, "search result offset")
	cmd.Flags().BoolVar(&analyzeExternal, "external", false, "summarize with the external model first")
	cmd.Flags().BoolVar(&analyzeOverview, "overview", false, "add a markdown overview across articles")
	cmd.Flags().BoolVar(&analyzeAnalysis, "analysis", false, "add a comparative markdown analysis")
	cmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&analyzeExport, "export", false, "export the report with the configured storage backend")
	cmd.Flags().StringVarP(&analyzeFormat, "format", "f", "", "export format: json, jsonl, csv, mongodb (comma-separated for several)")
	cmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "export directory")
	cmd.Flags().StringVar(&analyzeDelay, "delay", "", "politeness delay between article fetches")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if analyzeFormat != "" {
			c.Storage.Type = strings.ToLower(analyzeFormat)
		}
		if analyzeOutput != "" {
			c.Storage.OutputPath = analyzeOutput
		}
		if analyzeDelay != "" {
			if d, err := time.ParseDuration(analyzeDelay); err == nil {
				c.Engine.PolitenessDelay = d
			}
		}
	})
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	eng, err := engine.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	company := strings.Join(args, " ")
	start := time.Now()
	report, err := eng.Analyze(ctx, engine.Query{
		Company:     company,
		Limit:       analyzeLimit,
		Skip:        analyzeSkip,
		UseExternal: analyzeExternal,
		Overview:    analyzeOverview,
		Analysis:    analyzeAnalysis,
	})
	if errors.Is(err, types.ErrNoArticles) {
		fmt.Println("Sorry, no article found at the moment.")
		return nil
	}
	if err != nil {
		return err
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(report, time.Since(start))
	}

	if analyzeExport {
		store, err := storage.New(cfg.Storage, logger)
		if err != nil {
			return err
		}
		if err := storage.Export(ctx, store, report); err != nil {
			return err
		}
		fmt.Printf("   Exported:  %s\n", storage.Describe(cfg.Storage))
	}

	eng.Metrics().LogSummary()
	return nil
}

func printReport(report *types.Report, elapsed time.Duration) {
	fmt.Printf("\n%s: %d articles in %s\n\n", report.Company, len(report.Articles), elapsed.Round(time.Millisecond))
	for i, a := range report.Articles {
		fmt.Printf("%d. [%s] %s\n", i+1, a.Sentiment, a.Title)
		fmt.Printf("   %s\n", a.URL)
		fmt.Printf("   %s\n\n", a.Summary)
	}
	fmt.Printf("Sentiment: %s\n", report.Distribution)

	if report.Overview != "" {
		fmt.Printf("\nOverview\n--------\n%s\n", report.Overview)
	}
	if report.Analysis != "" {
		fmt.Printf("\nAnalysis\n--------\n%s\n", report.Analysis)
	}
}
