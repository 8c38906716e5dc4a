package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/IshaanNene/NewsLens/internal/ai"
	"github.com/IshaanNene/NewsLens/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fixedScorer struct {
	score float64
	err   error
	seen  []string
}

func (f *fixedScorer) Polarity(_ context.Context, s string) (float64, error) {
	f.seen = append(f.seen, s)
	return f.score, f.err
}

type failingMiddleware struct{}

func (failingMiddleware) Name() string { return "explode" }
func (failingMiddleware) Process(context.Context, *types.Article) (*types.Article, error) {
	return nil, errors.New("boom")
}

func TestPipelineBasic(t *testing.T) {
	p := New(testLogger)
	p.Use(Trim)

	art := &types.Article{Title: "  Hello World  ", Summary: " spaces ", URL: " https://a.example/x "}
	result, err := p.Process(context.Background(), art)
	if err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if result.Title != "Hello World" || result.Summary != "spaces" || result.URL != "https://a.example/x" {
		t.Errorf("not trimmed: %+v", result)
	}
	if p.Len() != 1 {
		t.Errorf("Len = %d", p.Len())
	}
}

func TestPipelineError(t *testing.T) {
	p := New(testLogger)
	p.Use(failingMiddleware{})

	_, err := p.Process(context.Background(), &types.Article{URL: "https://a.example"})
	var pipeErr *types.PipelineError
	if !errors.As(err, &pipeErr) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if pipeErr.Stage != "explode" || pipeErr.URL != "https://a.example" {
		t.Errorf("unexpected error fields: %+v", pipeErr)
	}
}

func TestRequireTitle(t *testing.T) {
	m := RequireTitle

	if res, _ := m.Process(context.Background(), &types.Article{Title: "Hello"}); res == nil {
		t.Error("article with title should pass")
	}
	if res, _ := m.Process(context.Background(), &types.Article{Summary: "no title"}); res != nil {
		t.Error("article without title should be dropped")
	}
}

func TestHTMLSanitizeMiddleware(t *testing.T) {
	m := NewHTMLSanitizeMiddleware()
	art := &types.Article{
		Title:   `<b>Acme</b> &amp; Co`,
		Summary: `<p>Hello <b>World</b></p> &amp; <a href="x">link</a>`,
	}

	result, err := m.Process(context.Background(), art)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if result.Title != "Acme & Co" {
		t.Errorf("title = %q", result.Title)
	}
	if result.Summary != "Hello World & link" {
		t.Errorf("expected 'Hello World & link', got %q", result.Summary)
	}
}

func TestDedupMiddleware(t *testing.T) {
	m := NewDedupMiddleware()
	ctx := context.Background()

	if res, _ := m.Process(ctx, &types.Article{URL: "https://a.example/1", Title: "A"}); res == nil {
		t.Fatal("first article dropped")
	}
	if res, _ := m.Process(ctx, &types.Article{URL: "https://a.example/1", Title: "B"}); res != nil {
		t.Error("duplicate URL should be dropped")
	}
	if res, _ := m.Process(ctx, &types.Article{URL: "https://b.example/1", Title: "A"}); res == nil {
		t.Error("same title on another URL should pass")
	}
}

func TestPipelineStopsAfterDrop(t *testing.T) {
	var reached bool
	p := New(testLogger)
	p.Use(RequireTitle, Func{Stage: "mark", Fn: func(_ context.Context, a *types.Article) (*types.Article, error) {
		reached = true
		return a, nil
	}})

	res, err := p.Process(context.Background(), &types.Article{URL: "https://a.example"})
	if res != nil || err != nil {
		t.Fatalf("Process = %v, %v", res, err)
	}
	if reached {
		t.Error("stage after a drop should not run")
	}
}

func TestSentimentMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		scorer  *fixedScorer
		art     types.Article
		want    types.Sentiment
		scoreOn string
	}{
		{"positive summary", &fixedScorer{score: 0.4}, types.Article{Title: "T", Summary: "Good news"}, types.SentimentPositive, "Good news"},
		{"negative", &fixedScorer{score: -0.2}, types.Article{Title: "T", Summary: "Bad news"}, types.SentimentNegative, "Bad news"},
		{"failed summary uses title", &fixedScorer{score: 0}, types.Article{Title: "Title only", Summary: types.SummaryErrorText}, types.SentimentNeutral, "Title only"},
		{"scorer error is neutral", &fixedScorer{score: 0.9, err: errors.New("down")}, types.Article{Title: "T", Summary: "S"}, types.SentimentNeutral, "S"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art := tt.art
			res, err := NewSentimentMiddleware(tt.scorer, testLogger).Process(context.Background(), &art)
			if err != nil || res == nil {
				t.Fatalf("Process = %v, %v", res, err)
			}
			if res.Sentiment != tt.want {
				t.Errorf("sentiment = %s, want %s", res.Sentiment, tt.want)
			}
			if len(tt.scorer.seen) != 1 || tt.scorer.seen[0] != tt.scoreOn {
				t.Errorf("scored %q, want %q", tt.scorer.seen, tt.scoreOn)
			}
		})
	}
}

func TestDefaultPipeline(t *testing.T) {
	p := Default(ai.LexiconScorer{}, testLogger)
	ctx := context.Background()

	in := []*types.Article{
		{Title: " <i>Acme profits surge</i> ", Summary: "Acme reported strong growth and record profits.", URL: "https://a.example/1"},
		{Title: "", Summary: "Untitled", URL: "https://a.example/2"},
		{Title: "Acme again", Summary: "Repeat", URL: "https://a.example/1"},
		{Title: "Acme probe", Summary: types.SummaryErrorText, URL: "https://a.example/3"},
	}

	var out []*types.Article
	for _, a := range in {
		res, err := p.Process(ctx, a)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if res != nil {
			out = append(out, res)
		}
	}

	if len(out) != 2 {
		t.Fatalf("kept %d articles, want 2", len(out))
	}
	if out[0].Title != "Acme profits surge" || out[0].Sentiment != types.SentimentPositive {
		t.Errorf("first = %+v", out[0])
	}
	if out[1].Sentiment != types.SentimentNegative {
		t.Errorf("title fallback should score 'probe' negative, got %s", out[1].Sentiment)
	}
}
