package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/NewsLens/internal/ai"
	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/fetcher"
	"github.com/IshaanNene/NewsLens/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeDiscoverer struct {
	links     []string
	err       error
	gotSkip   int
	gotCount  int
	gotTarget string
}

func (f *fakeDiscoverer) Name() string { return "fake" }

func (f *fakeDiscoverer) Discover(_ context.Context, company string, skip, count int) ([]string, error) {
	f.gotTarget, f.gotSkip, f.gotCount = company, skip, count
	return f.links, f.err
}

type fakeExternal struct {
	err   error
	calls int
}

func (f *fakeExternal) SummarizeArticle(_ context.Context, title, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "External view of " + title + ".", nil
}

func articlePage(title, sentence string, repeat int) string {
	return "<html><head><title>" + title + "</title></head><body><article>" +
		strings.Repeat("<p>"+sentence+"</p>\n", repeat) +
		"</article></body></html>"
}

// newsServer serves a fixed set of pages keyed by path.
func newsServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEngine(t *testing.T, d *fakeDiscoverer, external ai.ExternalSummarizer) *Engine {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Engine.PolitenessDelay = 0

	f, err := fetcher.NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	e := New(cfg, testLogger)
	e.SetFetcher(f)
	e.SetDiscoverer(d)
	e.SetReducer(ai.NewReducer(ai.NewExtractiveSummarizer(ai.DefaultSummaryBounds, 3), external, 0, testLogger))
	t.Cleanup(func() { _ = e.Close() })
	return e
}

const (
	goodNews = "Acme Corp reported record profits and strong growth as investors cheered the results this quarter."
	badNews  = "Acme Corp faces a fraud probe and a lawsuit after heavy losses were disclosed by regulators today."
)

func TestCollect(t *testing.T) {
	srv := newsServer(t, map[string]string{
		"/good":     articlePage("Acme soars", goodNews, 10),
		"/bad":      articlePage("Acme probed", badNews, 10),
		"/js":       "<html><body><p>Please enable JavaScript to view this page.</p>" + strings.Repeat("<p>filler text here</p>", 60) + "</body></html>",
		"/short":    articlePage("Short", "Tiny.", 1),
		"/untitled": "<html><body><article>" + strings.Repeat("<p>"+goodNews+"</p>", 10) + "</article></body></html>",
		"/extra":    articlePage("Acme extra", goodNews, 10),
	})

	d := &fakeDiscoverer{links: []string{
		srv.URL + "/js",
		srv.URL + "/good",
		srv.URL + "/good#comments",
		srv.URL + "/missing",
		srv.URL + "/short",
		srv.URL + "/untitled",
		srv.URL + "/bad",
		srv.URL + "/extra",
	}}
	e := newTestEngine(t, d, nil)

	articles, err := e.Collect(context.Background(), Query{Company: " Acme ", Limit: 2, Skip: 4})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if d.gotTarget != "Acme" || d.gotSkip != 4 || d.gotCount != 4 {
		t.Errorf("discover called with (%q, %d, %d)", d.gotTarget, d.gotSkip, d.gotCount)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	if articles[0].URL != srv.URL+"/good" || articles[1].URL != srv.URL+"/bad" {
		t.Errorf("unexpected order/urls: %s, %s", articles[0].URL, articles[1].URL)
	}
	if articles[0].Sentiment != types.SentimentPositive || articles[1].Sentiment != types.SentimentNegative {
		t.Errorf("sentiments = %s, %s", articles[0].Sentiment, articles[1].Sentiment)
	}
	for _, a := range articles {
		if !a.HasSummary() {
			t.Errorf("%s: missing summary", a.URL)
		}
	}

	m := e.Metrics().Snapshot()
	// js wall, 404 and short page; a 404 is a response, not a fetch failure.
	if m["pages_non_static_total"] != 3 {
		t.Errorf("non-static pages = %d, want 3", m["pages_non_static_total"])
	}
	if m["fetch_failures_total"] != 0 {
		t.Errorf("fetch failures = %d", m["fetch_failures_total"])
	}
	if m["pages_fetched_total"] != 6 {
		t.Errorf("pages fetched = %d, want 6", m["pages_fetched_total"])
	}
	if m["articles_dropped_total"] != 1 {
		t.Errorf("dropped = %d, want 1 (untitled)", m["articles_dropped_total"])
	}
}

func TestCollectExternalPath(t *testing.T) {
	srv := newsServer(t, map[string]string{
		"/a": articlePage("Acme A", goodNews, 10),
		"/b": articlePage("Acme B", goodNews, 10),
	})
	d := &fakeDiscoverer{links: []string{srv.URL + "/a", srv.URL + "/b"}}

	ext := &fakeExternal{}
	e := newTestEngine(t, d, ext)
	articles, err := e.Collect(context.Background(), Query{Company: "Acme", Limit: 10, UseExternal: true})
	if err != nil {
		t.Fatal(err)
	}
	if d.gotCount != 6 {
		t.Errorf("external limit not capped: discover count = %d, want 6", d.gotCount)
	}
	if len(articles) != 2 || articles[0].Summary != "External view of Acme A." {
		t.Errorf("articles = %+v", articles)
	}

	failing := &fakeExternal{err: types.ErrNoCredentials}
	e = newTestEngine(t, &fakeDiscoverer{links: []string{srv.URL + "/a"}}, failing)
	articles, err = e.Collect(context.Background(), Query{Company: "Acme", Limit: 1, UseExternal: true})
	if err != nil || len(articles) != 1 {
		t.Fatalf("Collect = %v, %v", articles, err)
	}
	if !articles[0].HasSummary() || failing.calls != 1 {
		t.Errorf("local fallback not used: %+v", articles[0])
	}
	if e.Metrics().LocalFallbacks.Load() != 1 {
		t.Error("fallback not counted")
	}
}

func TestCollectErrors(t *testing.T) {
	e := newTestEngine(t, &fakeDiscoverer{err: errors.New("blocked")}, nil)

	if _, err := e.Collect(context.Background(), Query{Company: "  "}); !errors.Is(err, types.ErrInvalidCompany) {
		t.Errorf("expected ErrInvalidCompany, got %v", err)
	}
	if _, err := e.Collect(context.Background(), Query{Company: "Acme"}); err == nil {
		t.Error("expected discovery error")
	}
}

func TestCollectCancelledDuringDelay(t *testing.T) {
	srv := newsServer(t, map[string]string{
		"/a": articlePage("Acme A", goodNews, 10),
		"/b": articlePage("Acme B", goodNews, 10),
	})
	e := newTestEngine(t, &fakeDiscoverer{links: []string{srv.URL + "/a", srv.URL + "/b"}}, nil)
	e.cfg.Engine.PolitenessDelay = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	articles, err := e.Collect(ctx, Query{Company: "Acme", Limit: 2})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if len(articles) != 1 {
		t.Errorf("partial result should hold the first article, got %d", len(articles))
	}
	if time.Since(start) > 10*time.Second {
		t.Error("politeness delay ignored cancellation")
	}
}

func TestCollectCollapsesRedirectsToSamePage(t *testing.T) {
	srv := newsServer(t, map[string]string{
		"/story": articlePage("Acme soars", goodNews, 10),
	})
	mux := http.NewServeMux()
	mux.HandleFunc("/r/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/story", http.StatusFound)
	})
	feed := httptest.NewServer(mux)
	defer feed.Close()

	e := newTestEngine(t, &fakeDiscoverer{links: []string{feed.URL + "/r/1", feed.URL + "/r/2"}}, nil)
	articles, err := e.Collect(context.Background(), Query{Company: "Acme", Limit: 5})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("articles = %d, want 1", len(articles))
	}
	if articles[0].URL != srv.URL+"/story" {
		t.Errorf("URL = %q, want the publisher page", articles[0].URL)
	}
}

func TestAnalyze(t *testing.T) {
	srv := newsServer(t, map[string]string{
		"/good": articlePage("Acme soars", goodNews, 10),
		"/bad":  articlePage("Acme probed", badNews, 10),
	})
	e := newTestEngine(t, &fakeDiscoverer{links: []string{srv.URL + "/good", srv.URL + "/bad"}}, nil)

	report, err := e.Analyze(context.Background(), Query{Company: "Acme", Limit: 5, Overview: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Distribution.Total() != len(report.Articles) || report.Distribution.Positive != 1 || report.Distribution.Negative != 1 {
		t.Errorf("distribution = %+v", report.Distribution)
	}
	if report.Overview != "" {
		t.Error("overview without a generator should stay empty")
	}

	empty := newTestEngine(t, &fakeDiscoverer{links: []string{srv.URL + "/nothing"}}, nil)
	report, err = empty.Analyze(context.Background(), Query{Company: "Acme"})
	if !errors.Is(err, types.ErrNoArticles) {
		t.Fatalf("expected ErrNoArticles, got %v", err)
	}
	if report == nil || report.Distribution.Total() != 0 {
		t.Errorf("empty report = %+v", report)
	}
}

func TestClampLimit(t *testing.T) {
	cfg := config.DefaultConfig().Engine
	tests := []struct {
		limit    int
		external bool
		want     int
	}{
		{0, false, 5},
		{-3, false, 5},
		{7, false, 7},
		{50, false, 10},
		{5, true, 3},
		{0, true, 3},
		{2, true, 2},
	}
	for _, tt := range tests {
		if got := ClampLimit(&cfg, tt.limit, tt.external); got != tt.want {
			t.Errorf("ClampLimit(%d, %v) = %d, want %d", tt.limit, tt.external, got, tt.want)
		}
	}

	if ParseLimit(&cfg, "abc", false) != 5 || ParseLimit(&cfg, "12", false) != 10 {
		t.Error("ParseLimit")
	}
	if ParseSkip("-1") != 0 || ParseSkip("x") != 0 || ParseSkip("20") != 20 {
		t.Error("ParseSkip")
	}
	if !ParseBool("True") || ParseBool("0") || ParseBool("") {
		t.Error("ParseBool")
	}
}

func TestCanonicalizeURL(t *testing.T) {
	tests := map[string]string{
		"HTTPS://News.Example.com:443/a/?utm_source=x&b=2&a=1#top": "https://news.example.com/a?a=1&b=2",
		"http://example.com":                     "http://example.com/",
		"https://example.com/story?fbclid=abc":   "https://example.com/story",
		"https://example.com:8443/x":             "https://example.com:8443/x",
	}
	for in, want := range tests {
		if got := CanonicalizeURL(in); got != want {
			t.Errorf("CanonicalizeURL(%q) = %q, want %q", in, got, want)
		}
	}

	s := NewLinkSet(2)
	if !s.Add("https://a.example/x") || s.Add("https://A.example/x/#frag") || s.Len() != 1 {
		t.Error("LinkSet did not collapse equivalent URLs")
	}
}
