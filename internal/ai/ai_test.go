package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// stubGenerator records prompts and replies from a function.
type stubGenerator struct {
	prompts []string
	reply   func(prompt string) (string, error)
}

func (s *stubGenerator) Name() string { return "stub" }

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply(prompt)
}

// recordingSummarizer echoes a marker and records its inputs.
type recordingSummarizer struct {
	inputs []string
	failAt int
}

func (r *recordingSummarizer) Summarize(_ context.Context, s string) (string, error) {
	r.inputs = append(r.inputs, s)
	if r.failAt > 0 && len(r.inputs) == r.failAt {
		return "", errors.New("model exploded")
	}
	return fmt.Sprintf("S%d.", len(r.inputs)), nil
}

type stubExternal struct {
	summary string
	err     error
	calls   int
}

func (s *stubExternal) SummarizeArticle(context.Context, string, string) (string, error) {
	s.calls++
	return s.summary, s.err
}

func longBody(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		fmt.Fprintf(&b, "Sentence number %d talks about the company results in some detail. ", i)
	}
	return b.String()
}

func TestReducerExternalFirst(t *testing.T) {
	local := &recordingSummarizer{}
	ext := &stubExternal{summary: "External summary."}
	r := NewReducer(local, ext, 200, testLogger)

	out := r.Reduce(context.Background(), "Acme", longBody(20), true)
	if !out.OK() || out.Method != MethodExternal || out.Summary != "External summary." {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(local.inputs) != 0 {
		t.Error("local summarizer must not run after external success")
	}
}

func TestReducerExternalNotRequested(t *testing.T) {
	ext := &stubExternal{summary: "External summary."}
	r := NewReducer(&recordingSummarizer{}, ext, 200, testLogger)

	out := r.Reduce(context.Background(), "Acme", longBody(5), false)
	if ext.calls != 0 {
		t.Error("external summarizer called although not requested")
	}
	if out.Method != MethodLocal {
		t.Errorf("method = %s", out.Method)
	}
}

func TestReducerExternalFailureFallsBack(t *testing.T) {
	local := &recordingSummarizer{}
	ext := &stubExternal{err: types.ErrNoCredentials}
	r := NewReducer(local, ext, 200, testLogger)

	out := r.Reduce(context.Background(), "Acme", longBody(10), true)
	if !out.OK() || out.Method != MethodLocal {
		t.Fatalf("expected local fallback, got %+v", out)
	}
	if !errors.Is(out.ExternalErr, types.ErrNoCredentials) {
		t.Errorf("external error not recorded: %v", out.ExternalErr)
	}
}

func TestReducerChunkAndReduce(t *testing.T) {
	local := &recordingSummarizer{}
	r := NewReducer(local, nil, 200, testLogger)

	out := r.Reduce(context.Background(), "Acme Q3", longBody(10), false)
	if !out.OK() {
		t.Fatalf("reduce failed: %v", out.Err)
	}

	chunkCalls := len(local.inputs) - 1
	if chunkCalls < 2 {
		t.Fatalf("expected several chunk calls, got %d", chunkCalls)
	}
	for i := 0; i < chunkCalls; i++ {
		if !strings.HasPrefix(local.inputs[i], "Acme Q3 - ") {
			t.Errorf("chunk input %d missing title prefix: %q", i, local.inputs[i])
		}
	}

	// The final call sees the chunk summaries joined by single spaces.
	var want []string
	for i := 1; i <= chunkCalls; i++ {
		want = append(want, fmt.Sprintf("S%d.", i))
	}
	if got := local.inputs[chunkCalls]; got != strings.Join(want, " ") {
		t.Errorf("reduce input = %q, want %q", got, strings.Join(want, " "))
	}
	if out.Summary != fmt.Sprintf("S%d.", chunkCalls+1) {
		t.Errorf("summary = %q", out.Summary)
	}
}

func TestReducerFailureSentinel(t *testing.T) {
	local := &recordingSummarizer{failAt: 2}
	r := NewReducer(local, nil, 200, testLogger)

	out := r.Reduce(context.Background(), "  Café Acme™ ", longBody(10), false)
	if out.OK() {
		t.Fatal("expected failure")
	}
	if out.Summary != types.SummaryErrorText {
		t.Errorf("summary = %q", out.Summary)
	}
	if out.Title != "Cafe AcmeTM" {
		t.Errorf("title = %q, want normalized title", out.Title)
	}
	var sumErr *types.SummarizeError
	if !errors.As(out.Err, &sumErr) || sumErr.Stage != "chunk" {
		t.Errorf("unexpected error: %v", out.Err)
	}
	if len(local.inputs) != 2 {
		t.Errorf("reduction should stop at the first failure, got %d calls", len(local.inputs))
	}
}

func TestReducerEmptyText(t *testing.T) {
	out := NewReducer(&recordingSummarizer{}, nil, 0, testLogger).Reduce(context.Background(), "T", "   ", false)
	if out.OK() || !errors.Is(out.Err, types.ErrEmptyText) {
		t.Errorf("expected empty text failure, got %+v", out)
	}
}

func TestModelSummarizerShortPassthrough(t *testing.T) {
	gen := &stubGenerator{reply: func(string) (string, error) { return "summary", nil }}
	m := NewModelSummarizer(gen, DefaultSummaryBounds)

	short := "Only a few words here."
	got, err := m.Summarize(context.Background(), short)
	if err != nil || got != short {
		t.Errorf("short input should pass through, got %q, %v", got, err)
	}
	if len(gen.prompts) != 0 {
		t.Error("model called for short input")
	}

	got, err = m.Summarize(context.Background(), longBody(6))
	if err != nil || got != "summary" {
		t.Errorf("got %q, %v", got, err)
	}
	if !strings.Contains(gen.prompts[0], "between 30 and 100 words") {
		t.Errorf("prompt missing bounds: %q", gen.prompts[0])
	}
}

func TestModelSummarizerEmptyReply(t *testing.T) {
	gen := &stubGenerator{reply: func(string) (string, error) { return "", nil }}
	if _, err := NewModelSummarizer(gen, DefaultSummaryBounds).Summarize(context.Background(), longBody(6)); err == nil {
		t.Error("expected error for empty model reply")
	}
}

func TestExtractiveSummarizer(t *testing.T) {
	in := "Acme reported record revenue growth in the quarter. " +
		"The weather in the city was mild on Tuesday afternoon. " +
		"Analysts said Acme revenue growth beat expectations again. " +
		"Acme plans to reinvest revenue growth into new factories. " +
		"A local bakery opened a second shop downtown near the river. " +
		"Acme shares rose after the revenue announcement by management."
	e := NewExtractiveSummarizer(SummaryBounds{MinWords: 10, MaxLength: 100}, 2)

	got, err := e.Summarize(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "weather") || strings.Contains(got, "bakery") {
		t.Errorf("off-topic sentence kept: %q", got)
	}
	if n := len(strings.SplitAfter(strings.TrimSpace(got), ". ")); n != 2 {
		t.Errorf("expected 2 sentences, got %q", got)
	}
}

func TestLabelAndTally(t *testing.T) {
	if Label(0.3) != types.SentimentPositive || Label(-0.01) != types.SentimentNegative || Label(0) != types.SentimentNeutral {
		t.Error("label thresholds wrong")
	}

	articles := []types.Article{
		{Sentiment: types.SentimentPositive},
		{Sentiment: types.SentimentNegative},
		{Sentiment: types.SentimentNeutral},
		{Sentiment: types.SentimentPositive},
	}
	got := Tally(articles)
	if got.Positive != 2 || got.Negative != 1 || got.Neutral != 1 || got.Total() != len(articles) {
		t.Errorf("tally = %+v", got)
	}

	reversed := []types.Article{articles[3], articles[2], articles[1], articles[0]}
	if Tally(reversed) != got {
		t.Error("tally depends on order")
	}
	if got.String() != "Positive: 2, Negative: 1, Neutral: 1" {
		t.Errorf("String() = %q", got.String())
	}
}

func TestLexiconScorer(t *testing.T) {
	tests := []struct {
		text string
		want types.Sentiment
	}{
		{"Acme shares surged after record profits and strong growth.", types.SentimentPositive},
		{"Acme faces lawsuit and fraud probe after heavy losses.", types.SentimentNegative},
		{"Acme will hold its annual meeting on Thursday.", types.SentimentNeutral},
		{"The quarter was not good for Acme.", types.SentimentNegative},
		{"", types.SentimentNeutral},
	}
	for _, tt := range tests {
		score, err := LexiconScorer{}.Polarity(context.Background(), tt.text)
		if err != nil {
			t.Fatal(err)
		}
		if got := Label(score); got != tt.want {
			t.Errorf("%q: got %s (%.2f), want %s", tt.text, got, score, tt.want)
		}
	}
}

func TestLLMScorer(t *testing.T) {
	gen := &stubGenerator{reply: func(string) (string, error) { return "```json\n{\"score\": 0.7}\n```", nil }}
	score, err := NewLLMScorer(gen, testLogger).Polarity(context.Background(), "anything")
	if err != nil || score != 0.7 {
		t.Errorf("score = %v, %v", score, err)
	}

	broken := &stubGenerator{reply: func(string) (string, error) { return "", errors.New("down") }}
	score, _ = NewLLMScorer(broken, testLogger).Polarity(context.Background(), "Acme posted huge losses")
	if Label(score) != types.SentimentNegative {
		t.Errorf("expected lexicon fallback, got %v", score)
	}

	clamped := &stubGenerator{reply: func(string) (string, error) { return `{"score": 4}`, nil }}
	if score, _ := NewLLMScorer(clamped, testLogger).Polarity(context.Background(), "x"); score != 1 {
		t.Errorf("score not clamped: %v", score)
	}
}

func TestTextFor(t *testing.T) {
	a := types.Article{Title: "Title", Summary: types.SummaryErrorText}
	if TextFor(&a) != "Title" {
		t.Error("failed summary should fall back to title")
	}
	a.Summary = "Real summary"
	if TextFor(&a) != "Real summary" {
		t.Error("summary should be preferred")
	}
}

func TestAnalyst(t *testing.T) {
	gen := &stubGenerator{reply: func(string) (string, error) { return "## Overview\n- point", nil }}
	a := NewAnalyst(gen, 5000)
	articles := []types.Article{
		{Title: "Acme wins contract", Summary: "Acme won a big contract.", Sentiment: types.SentimentPositive},
		{Title: "Acme recall", Summary: types.SummaryErrorText, Sentiment: types.SentimentNegative},
	}

	md, err := a.Compare(context.Background(), articles)
	if err != nil || !strings.HasPrefix(md, "## Overview") {
		t.Fatalf("Compare = %q, %v", md, err)
	}
	p := gen.prompts[0]
	if !strings.Contains(p, "1. Acme wins contract [Positive]") || !strings.Contains(p, "Acme won a big contract.") {
		t.Errorf("prompt missing article digest: %q", p)
	}
	if strings.Contains(p, types.SummaryErrorText) {
		t.Error("placeholder summary leaked into prompt")
	}

	if _, err := a.Overview(context.Background(), nil); !errors.Is(err, types.ErrNoArticles) {
		t.Errorf("expected ErrNoArticles, got %v", err)
	}
	if _, err := NewAnalyst(nil, 0).Overview(context.Background(), articles); !errors.Is(err, types.ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestOllamaGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "tiny" || req["stream"] != false {
			t.Errorf("unexpected payload: %v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "  generated text \n"})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL+"/", "tiny", time.Second, testLogger)
	out, err := g.Generate(context.Background(), "hello")
	if err != nil || out != "generated text" {
		t.Errorf("Generate = %q, %v", out, err)
	}
}

func TestOllamaGeneratorHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewOllamaGenerator(srv.URL, "x", time.Second, testLogger).Generate(context.Background(), "p"); err == nil {
		t.Error("expected error on 404")
	}
}

func TestOpenAIGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"openai says hi"}}]}`)
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(srv.URL+"/v1/", "m", "sk-test", 5*time.Second, testLogger)
	out, err := g.Generate(context.Background(), "hello")
	if err != nil || out != "openai says hi" {
		t.Errorf("Generate = %q, %v", out, err)
	}
}

func TestGeneratorsRequireCredentials(t *testing.T) {
	gens := []Generator{
		NewOpenAIGenerator("", "", "", time.Second, testLogger),
		NewGeminiGenerator("", "", time.Second, testLogger),
	}
	for _, g := range gens {
		if _, err := g.Generate(context.Background(), "p"); !errors.Is(err, types.ErrNoCredentials) {
			t.Errorf("%s: expected ErrNoCredentials, got %v", g.Name(), err)
		}
	}
}

func TestGeminiClientReused(t *testing.T) {
	g := NewGeminiGenerator("", "test-key", time.Second, testLogger)
	first, err := g.sharedClient()
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.sharedClient()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected one client across calls")
	}
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}
	if g.client != nil {
		t.Error("expected Close to drop the client")
	}
	if err := g.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestBuildClosesGeminiClient(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Summarizer.Local = "extractive"
	cfg.LLM.External = config.ProviderConfig{Enabled: true, Provider: "gemini", APIKey: "test-key"}

	c, err := Build(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.closers) != 1 {
		t.Fatalf("expected the gemini generator to be closable, got %d closers", len(c.closers))
	}
	g := c.closers[0].(*GeminiGenerator)
	if _, err := g.sharedClient(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if g.client != nil {
		t.Error("expected Close to release the client")
	}
}

func TestBuild(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Summarizer.Local = "extractive"
	cfg.LLM.External.Enabled = false

	c, err := Build(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if c.Reducer.HasExternal() {
		t.Error("external summarizer built although disabled")
	}
	if _, ok := c.Reducer.local.(*ExtractiveSummarizer); !ok {
		t.Errorf("local = %T, want extractive", c.Reducer.local)
	}
	if _, ok := c.Scorer.(LexiconScorer); !ok {
		t.Errorf("scorer = %T, want lexicon", c.Scorer)
	}

	cfg.LLM.Local.Provider = "bard"
	if _, err := Build(cfg, testLogger); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestCleanResponse(t *testing.T) {
	if got := cleanResponse("```markdown\n# Hi\n```"); got != "# Hi" {
		t.Errorf("got %q", got)
	}
	if got := extractJSON(`noise {"a": {"b": 1}} tail`); got != `{"a": {"b": 1}}` {
		t.Errorf("got %q", got)
	}
}
