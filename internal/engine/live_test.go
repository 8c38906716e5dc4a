package engine

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/IshaanNene/NewsLens/internal/config"
)

// TestLiveAnalyze runs the whole flow against the real search provider.
func TestLiveAnalyze(t *testing.T) {
	if testing.Short() || os.Getenv("NEWSLENS_LIVE") == "" {
		t.Skip("skipping live test (set NEWSLENS_LIVE=1)")
	}

	cfg := config.DefaultConfig()
	cfg.Summarizer.Local = "extractive"
	cfg.LLM.Local.Enabled = false
	cfg.LLM.External.Enabled = false

	e, err := NewFromConfig(cfg, testLogger)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := e.Analyze(ctx, Query{Company: "Microsoft", Limit: 3})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	for _, a := range report.Articles {
		t.Logf("[%s] %s (%s)", a.Sentiment, a.Title, a.URL)
	}
	t.Logf("Distribution: %s", report.Distribution)
	t.Logf("Metrics: %v", e.Metrics().Snapshot())

	if report.Distribution.Total() != len(report.Articles) {
		t.Errorf("distribution total %d != articles %d", report.Distribution.Total(), len(report.Articles))
	}
}
