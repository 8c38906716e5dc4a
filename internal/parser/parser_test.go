package parser

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/IshaanNene/NewsLens/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const searchHTML = `<!DOCTYPE html>
<html><body>
  <a href="/url?q=https://news.example.com/acme-profits&amp;sa=U&amp;ved=1">Acme profits</a>
  <a href="/url?q=https://maps.google.com/place&amp;sa=U">Maps</a>
  <a href="/url?q=https://blog.example.org/acme%3Fid%3D7&amp;sa=U">Acme blog</a>
  <a href="/url?q=https://news.example.com/acme-profits&amp;sa=X">Duplicate</a>
  <a href="/search?q=next">Next page</a>
</body></html>`

func paragraphs(n int) string {
	return strings.Repeat("<p>Acme Corp shipped a new product line and investors reacted with enthusiasm across the board.</p>\n", n)
}

var articleHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Acme posts record quarter | Example News</title>
  <meta property="og:title" content="Acme posts record quarter">
  <meta property="og:site_name" content="Example News">
  <script>var tracking = "enable JavaScript";</script>
</head>
<body>
  <nav><a href="/">Home</a></nav>
  <article>
    <h1>Acme posts record quarter</h1>
    ` + paragraphs(12) + `
  </article>
</body>
</html>`

func makeResp(url, body string) *types.Response {
	req, _ := types.NewRequest(url, types.PageArticle)
	return &types.Response{
		Request:     req,
		StatusCode:  200,
		Body:        []byte(body),
		ContentType: "text/html",
		FinalURL:    url,
	}
}

func TestExtractResultLinks(t *testing.T) {
	resp := makeResp("https://www.google.com/search?q=acme", searchHTML)
	seen := map[string]bool{}

	got, err := ExtractResultLinks(resp, []string{"google.com"}, seen)
	if err != nil {
		t.Fatalf("ExtractResultLinks: %v", err)
	}
	if got.Anchors != 4 {
		t.Errorf("anchors = %d, want 4", got.Anchors)
	}
	want := []string{"https://news.example.com/acme-profits", "https://blog.example.org/acme?id=7"}
	if len(got.Links) != len(want) {
		t.Fatalf("links = %q, want %q", got.Links, want)
	}
	for i := range want {
		if got.Links[i] != want[i] {
			t.Errorf("link %d = %q, want %q", i, got.Links[i], want[i])
		}
	}

	// A second page repeating the same links yields nothing new.
	again, _ := ExtractResultLinks(makeResp("https://www.google.com/search?q=acme&start=5", searchHTML), []string{"google.com"}, seen)
	if len(again.Links) != 0 {
		t.Errorf("expected no new links, got %q", again.Links)
	}
}

func TestDecodeResultHref(t *testing.T) {
	tests := map[string]string{
		"/url?q=https://a.com/x&sa=U":     "https://a.com/x",
		"/url?q=https://a.com/a%20b":      "https://a.com/a b",
		"/url?q=":                         "",
		"/url?q=https://a.com/p?x=1&y=2":  "https://a.com/p?x=1",
	}
	for in, want := range tests {
		if got := DecodeResultHref(in); got != want {
			t.Errorf("DecodeResultHref(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsStatic(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"article page", articleHTML, true},
		{"too short", "<html><body><p>Tiny page.</p></body></html>", false},
		{"javascript wall", "<html><body><noscript>Please enable JavaScript to continue.</noscript>" + paragraphs(12) + "</body></html>", false},
		{"script text ignored", "<html><body><script>" + strings.Repeat("x", 900) + "</script><p>short</p></body></html>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStatic(makeResp("https://news.example.com/a", tt.body), DefaultMinStaticText); got != tt.want {
				t.Errorf("IsStatic = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsStaticRejectsErrorStatus(t *testing.T) {
	resp := makeResp("https://news.example.com/a", articleHTML)
	resp.StatusCode = 404
	if IsStatic(resp, DefaultMinStaticText) {
		t.Error("404 page should not be static")
	}
}

func TestExtractorExtract(t *testing.T) {
	e := NewExtractor(0, testLogger)
	c, err := e.Extract(makeResp("https://news.example.com/acme", articleHTML))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if c.Title != "Acme posts record quarter" {
		t.Errorf("title = %q", c.Title)
	}
	if c.SiteName != "Example News" {
		t.Errorf("site = %q", c.SiteName)
	}
	if !strings.Contains(c.Text, "investors reacted with enthusiasm") {
		t.Errorf("text missing article body: %q", c.Text)
	}
	if c.Method == "" {
		t.Error("extraction method not recorded")
	}
}

func TestExtractorTitleFallback(t *testing.T) {
	body := "<html><head><title>Plain title</title></head><body><article>" + paragraphs(10) + "</article></body></html>"
	c, err := NewExtractor(0, testLogger).Extract(makeResp("https://news.example.com/b", body))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if c.Title != "Plain title" {
		t.Errorf("title = %q, want Plain title", c.Title)
	}
}

func TestExtractorEmptyPage(t *testing.T) {
	_, err := NewExtractor(0, testLogger).Extract(makeResp("https://news.example.com/c", "<html><body></body></html>"))
	var parseErr *types.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestExtractPDFRejectsGarbage(t *testing.T) {
	if _, err := ExtractPDF([]byte("%PDF-1.4 not really")); err == nil {
		t.Error("expected error for malformed pdf")
	}
}
