package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/IshaanNene/NewsLens/internal/text"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// LocalSummarizer is the bounded-context summarizer applied per chunk.
type LocalSummarizer interface {
	Summarize(ctx context.Context, s string) (string, error)
}

// ExternalSummarizer summarizes a whole article in one call.
type ExternalSummarizer interface {
	SummarizeArticle(ctx context.Context, title, body string) (string, error)
}

// SummaryBounds are the word limits of a local summary. Inputs with fewer
// than MinWords words are returned unchanged.
type SummaryBounds struct {
	MinWords  int
	MinLength int
	MaxLength int
}

// DefaultSummaryBounds mirrors a 30-100 word abstractive summary.
var DefaultSummaryBounds = SummaryBounds{MinWords: 50, MinLength: 30, MaxLength: 100}

// ModelSummarizer summarizes with a generator, usually a small local model.
type ModelSummarizer struct {
	gen    Generator
	bounds SummaryBounds
}

// NewModelSummarizer creates a ModelSummarizer.
func NewModelSummarizer(gen Generator, bounds SummaryBounds) *ModelSummarizer {
	return &ModelSummarizer{gen: gen, bounds: bounds}
}

// Summarize implements LocalSummarizer.
func (m *ModelSummarizer) Summarize(ctx context.Context, s string) (string, error) {
	if text.WordCount(s) < m.bounds.MinWords {
		return s, nil
	}
	out, err := m.gen.Generate(ctx, fmt.Sprintf(chunkSummaryPrompt, m.bounds.MinLength, m.bounds.MaxLength, s))
	if err != nil {
		return "", fmt.Errorf("%s: %w", m.gen.Name(), err)
	}
	if out == "" {
		return "", fmt.Errorf("%s: %w", m.gen.Name(), types.ErrEmptyResponse)
	}
	return out, nil
}

// ExtractiveSummarizer keeps the highest scoring sentences of the input,
// scored by the frequency of their content words. It needs no model.
type ExtractiveSummarizer struct {
	bounds       SummaryBounds
	maxSentences int
}

// NewExtractiveSummarizer creates an ExtractiveSummarizer.
func NewExtractiveSummarizer(bounds SummaryBounds, maxSentences int) *ExtractiveSummarizer {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	return &ExtractiveSummarizer{bounds: bounds, maxSentences: maxSentences}
}

// Summarize implements LocalSummarizer.
func (e *ExtractiveSummarizer) Summarize(_ context.Context, s string) (string, error) {
	if text.WordCount(s) < e.bounds.MinWords {
		return s, nil
	}
	sentences := text.SplitSentences(s)
	if len(sentences) == 0 {
		return "", types.ErrEmptyText
	}

	freq := make(map[string]int)
	for _, sent := range sentences {
		for _, w := range contentWords(sent) {
			freq[w]++
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, sent := range sentences {
		words := contentWords(sent)
		var sum int
		for _, w := range words {
			sum += freq[w]
		}
		score := 0.0
		if len(words) > 0 {
			score = float64(sum) / float64(len(words))
		}
		ranked[i] = scored{idx: i, score: score}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	n := e.maxSentences
	if n > len(ranked) {
		n = len(ranked)
	}
	keep := ranked[:n]
	sort.Slice(keep, func(a, b int) bool { return keep[a].idx < keep[b].idx })

	parts := make([]string, 0, n)
	for _, k := range keep {
		parts = append(parts, sentences[k.idx])
	}
	out := strings.Join(parts, " ")

	if e.bounds.MaxLength > 0 {
		if words := strings.Fields(out); len(words) > e.bounds.MaxLength {
			out = strings.Join(words[:e.bounds.MaxLength], " ")
		}
	}
	return out, nil
}

func contentWords(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 2 && !stopWords[f] {
			out = append(out, f)
		}
	}
	return out
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "with": true, "this": true,
	"from": true, "was": true, "are": true, "were": true, "has": true, "have": true,
	"had": true, "its": true, "but": true, "not": true, "they": true, "their": true,
	"will": true, "would": true, "said": true, "which": true, "been": true, "also": true,
	"into": true, "than": true, "about": true, "after": true, "over": true, "more": true,
}

// PromptSummarizer is the external path: it sends the whole article to a
// remote model in one prompt.
type PromptSummarizer struct {
	gen      Generator
	maxInput int
}

// NewPromptSummarizer creates a PromptSummarizer. Article text beyond
// maxInput bytes is cut before prompting.
func NewPromptSummarizer(gen Generator, maxInput int) *PromptSummarizer {
	return &PromptSummarizer{gen: gen, maxInput: maxInput}
}

// SummarizeArticle implements ExternalSummarizer.
func (p *PromptSummarizer) SummarizeArticle(ctx context.Context, title, body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", types.ErrEmptyText
	}
	out, err := p.gen.Generate(ctx, fmt.Sprintf(articleSummaryPrompt, title, text.Truncate(body, p.maxInput)))
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", types.ErrEmptyResponse
	}
	return out, nil
}
