// Package observability exposes process counters in the Prometheus text
// exposition format.
package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational metrics for the analysis service.
type Metrics struct {
	// API metrics
	RequestsTotal  atomic.Int64
	RequestsFailed atomic.Int64

	// Acquisition metrics
	LinksDiscovered atomic.Int64
	PagesFetched    atomic.Int64
	FetchFailures   atomic.Int64
	PagesNonStatic  atomic.Int64
	BytesDownloaded atomic.Int64

	// Summarization metrics
	ArticlesSummarized  atomic.Int64
	ExternalSummaries   atomic.Int64
	LocalFallbacks      atomic.Int64
	SummarizationErrors atomic.Int64
	ArticlesDropped     atomic.Int64

	// Speech metrics
	AudioGenerated atomic.Int64
	AudioCleaned   atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

type sample struct {
	name  string
	help  string
	kind  string
	value int64
}

func (m *Metrics) samples() []sample {
	return []sample{
		{"newslens_requests_total", "Total API requests served", "counter", m.RequestsTotal.Load()},
		{"newslens_requests_failed_total", "Total API requests answered with 5xx", "counter", m.RequestsFailed.Load()},
		{"newslens_links_discovered_total", "Total candidate links returned by discovery", "counter", m.LinksDiscovered.Load()},
		{"newslens_pages_fetched_total", "Total article pages fetched", "counter", m.PagesFetched.Load()},
		{"newslens_fetch_failures_total", "Total article fetches that failed", "counter", m.FetchFailures.Load()},
		{"newslens_pages_non_static_total", "Total pages rejected by the static heuristic", "counter", m.PagesNonStatic.Load()},
		{"newslens_bytes_downloaded_total", "Total article bytes downloaded", "counter", m.BytesDownloaded.Load()},
		{"newslens_articles_summarized_total", "Total articles summarized locally", "counter", m.ArticlesSummarized.Load()},
		{"newslens_external_summaries_total", "Total articles summarized by the external model", "counter", m.ExternalSummaries.Load()},
		{"newslens_local_fallbacks_total", "Total external failures recovered locally", "counter", m.LocalFallbacks.Load()},
		{"newslens_summarization_errors_total", "Total articles left with the placeholder summary", "counter", m.SummarizationErrors.Load()},
		{"newslens_articles_dropped_total", "Total articles dropped by the pipeline", "counter", m.ArticlesDropped.Load()},
		{"newslens_audio_generated_total", "Total audio files written", "counter", m.AudioGenerated.Load()},
		{"newslens_audio_cleaned_total", "Total audio files removed by the janitor", "counter", m.AudioCleaned.Load()},
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	for _, s := range m.samples() {
		fmt.Fprintf(w, "# HELP %s %s\n", s.name, s.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", s.name, s.kind)
		fmt.Fprintf(w, "%s %d\n", s.name, s.value)
	}
}

// Snapshot returns all metrics as a map keyed by metric name without the
// namespace prefix.
func (m *Metrics) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	for _, s := range m.samples() {
		out[s.name[len("newslens_"):]] = s.value
	}
	return out
}

// LogSummary writes the current counters at info level.
func (m *Metrics) LogSummary() {
	args := make([]any, 0, 28)
	for _, s := range m.samples() {
		if s.value != 0 {
			args = append(args, s.name[len("newslens_"):], s.value)
		}
	}
	m.logger.Info("metrics summary", args...)
}
