package observability

import (
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestMetricsServeHTTP(t *testing.T) {
	m := NewMetrics(testLogger)
	m.RequestsTotal.Add(3)
	m.LocalFallbacks.Add(1)

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		"# TYPE newslens_requests_total counter",
		"newslens_requests_total 3\n",
		"newslens_local_fallbacks_total 1\n",
		"newslens_audio_cleaned_total 0\n",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics(testLogger)
	m.ArticlesSummarized.Add(2)

	snap := m.Snapshot()
	if snap["articles_summarized_total"] != 2 {
		t.Errorf("snapshot = %v", snap)
	}
	if _, ok := snap["newslens_requests_total"]; ok {
		t.Error("snapshot keys should not carry the namespace")
	}
}
