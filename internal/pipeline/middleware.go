package pipeline

import (
	"context"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/IshaanNene/NewsLens/internal/ai"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// HTMLSanitizeMiddleware strips tags and entities that page titles and
// model output sometimes carry.
type HTMLSanitizeMiddleware struct {
	stripRe *regexp.Regexp
}

func NewHTMLSanitizeMiddleware() *HTMLSanitizeMiddleware {
	return &HTMLSanitizeMiddleware{
		stripRe: regexp.MustCompile(`<[^>]*>`),
	}
}

func (m *HTMLSanitizeMiddleware) Name() string { return "html_sanitize" }

func (m *HTMLSanitizeMiddleware) Process(_ context.Context, art *types.Article) (*types.Article, error) {
	art.Title = m.clean(art.Title)
	art.Summary = m.clean(art.Summary)
	return art, nil
}

func (m *HTMLSanitizeMiddleware) clean(s string) string {
	if s == "" {
		return s
	}
	s = m.stripRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// SentimentMiddleware labels each article. The summary is scored, or the
// title when summarization failed. A scorer error leaves the article
// Neutral rather than dropping it.
type SentimentMiddleware struct {
	scorer ai.Scorer
	logger *slog.Logger
}

func NewSentimentMiddleware(scorer ai.Scorer, logger *slog.Logger) *SentimentMiddleware {
	return &SentimentMiddleware{
		scorer: scorer,
		logger: logger.With("component", "sentiment"),
	}
}

func (m *SentimentMiddleware) Name() string { return "sentiment" }

func (m *SentimentMiddleware) Process(ctx context.Context, art *types.Article) (*types.Article, error) {
	score, err := m.scorer.Polarity(ctx, ai.TextFor(art))
	if err != nil {
		m.logger.Warn("scoring failed, labelling neutral", "url", art.URL, "error", err)
		art.Sentiment = types.SentimentNeutral
		return art, nil
	}
	art.Sentiment = ai.Label(score)
	m.logger.Debug("article scored", "url", art.URL, "score", score, "label", art.Sentiment)
	return art, nil
}

// Default builds the per-request article chain. Sanitizing runs before the
// title check so a title made only of markup counts as missing.
func Default(scorer ai.Scorer, logger *slog.Logger) *Pipeline {
	p := New(logger)
	p.Use(
		Trim,
		NewHTMLSanitizeMiddleware(),
		RequireTitle,
		NewDedupMiddleware(),
		NewSentimentMiddleware(scorer, logger),
	)
	return p
}
