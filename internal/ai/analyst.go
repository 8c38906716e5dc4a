package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/IshaanNene/NewsLens/internal/text"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// Analyst writes cross-article markdown reports with a remote model.
type Analyst struct {
	gen      Generator
	maxInput int
}

// NewAnalyst creates an Analyst. gen may be nil, in which case every call
// fails with types.ErrNoCredentials.
func NewAnalyst(gen Generator, maxInput int) *Analyst {
	return &Analyst{gen: gen, maxInput: maxInput}
}

// Overview summarizes the key developments across articles.
func (a *Analyst) Overview(ctx context.Context, articles []types.Article) (string, error) {
	return a.run(ctx, overviewPrompt, articles)
}

// Compare contrasts coverage across articles and their sentiment labels.
func (a *Analyst) Compare(ctx context.Context, articles []types.Article) (string, error) {
	return a.run(ctx, comparisonPrompt, articles)
}

func (a *Analyst) run(ctx context.Context, prompt string, articles []types.Article) (string, error) {
	if a.gen == nil {
		return "", types.ErrNoCredentials
	}
	if len(articles) == 0 {
		return "", types.ErrNoArticles
	}
	out, err := a.gen.Generate(ctx, fmt.Sprintf(prompt, text.Truncate(digest(articles), a.maxInput)))
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", types.ErrEmptyResponse
	}
	return out, nil
}

// digest renders articles as a numbered plain-text list for prompting.
func digest(articles []types.Article) string {
	var b strings.Builder
	for i, art := range articles {
		fmt.Fprintf(&b, "%d. %s", i+1, art.Title)
		if art.Sentiment != "" {
			fmt.Fprintf(&b, " [%s]", art.Sentiment)
		}
		b.WriteString("\n")
		if art.HasSummary() {
			b.WriteString("   ")
			b.WriteString(art.Summary)
			b.WriteString("\n")
		}
	}
	return b.String()
}
