package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/IshaanNene/NewsLens/internal/text"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// Scorer computes a polarity in [-1, 1] for a piece of text.
type Scorer interface {
	Polarity(ctx context.Context, s string) (float64, error)
}

// Label maps a polarity to its class. Zero is neutral.
func Label(score float64) types.Sentiment {
	switch {
	case score > 0:
		return types.SentimentPositive
	case score < 0:
		return types.SentimentNegative
	default:
		return types.SentimentNeutral
	}
}

// TextFor returns the text an article is scored on: its summary, or its
// title when summarization failed.
func TextFor(a *types.Article) string {
	if a.HasSummary() {
		return a.Summary
	}
	return a.Title
}

// Tally counts labels over a batch. The result always sums to len(articles).
func Tally(articles []types.Article) types.SentimentSummary {
	var s types.SentimentSummary
	for i := range articles {
		s.Add(articles[i].Sentiment)
	}
	return s
}

// LexiconScorer scores text with a fixed word list. A negation word
// flips the polarity of the next three words.
type LexiconScorer struct{}

// Polarity implements Scorer.
func (LexiconScorer) Polarity(_ context.Context, s string) (float64, error) {
	return lexiconPolarity(s), nil
}

func lexiconPolarity(s string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text.Normalize(s)), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	var pos, neg float64
	negateFor := 0
	for _, w := range words {
		if negations[w] || strings.HasSuffix(w, "n't") {
			negateFor = 3
			continue
		}
		v, ok := lexicon[w]
		if ok {
			if negateFor > 0 {
				v = -v * 0.5
			}
			if v > 0 {
				pos += v
			} else {
				neg -= v
			}
		}
		if negateFor > 0 {
			negateFor--
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return (pos - neg) / (pos + neg)
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "without": true, "nor": true, "hardly": true,
}

var lexicon = map[string]float64{
	// positive
	"gain": 1, "gains": 1, "gained": 1, "growth": 1, "grow": 1, "grows": 1, "surge": 1, "surged": 1,
	"soar": 1, "soared": 1, "rise": 0.5, "rises": 0.5, "rose": 0.5, "rally": 1, "rallied": 1,
	"profit": 1, "profits": 1, "profitable": 1, "record": 0.5, "strong": 1, "stronger": 1,
	"beat": 1, "beats": 1, "exceeded": 1, "upgrade": 1, "upgraded": 1, "success": 1,
	"successful": 1, "win": 1, "wins": 1, "won": 1, "award": 1, "innovative": 1, "innovation": 1,
	"launch": 0.5, "launches": 0.5, "launched": 0.5, "expand": 0.5, "expansion": 0.5,
	"partnership": 0.5, "boost": 1, "boosted": 1, "improve": 1, "improved": 1, "positive": 1,
	"optimistic": 1, "good": 1, "great": 1, "excellent": 1, "best": 1, "benefit": 1,
	"approval": 1, "approved": 1, "breakthrough": 1, "recovery": 0.5, "robust": 1,
	// negative
	"loss": -1, "losses": -1, "lose": -1, "lost": -1, "decline": -1, "declined": -1,
	"drop": -1, "dropped": -1, "fall": -0.5, "fell": -0.5, "falls": -0.5, "plunge": -1,
	"plunged": -1, "slump": -1, "weak": -1, "weaker": -1, "miss": -1, "missed": -1,
	"downgrade": -1, "downgraded": -1, "lawsuit": -1, "sued": -1, "fine": -0.5, "fined": -1,
	"probe": -1, "investigation": -1, "fraud": -1, "scandal": -1, "layoff": -1, "layoffs": -1,
	"cut": -0.5, "cuts": -0.5, "recall": -1, "breach": -1, "crisis": -1, "risk": -0.5,
	"risks": -0.5, "warning": -1, "warns": -1, "bad": -1, "worst": -1, "negative": -1,
	"concern": -0.5, "concerns": -0.5, "fail": -1, "failed": -1, "failure": -1,
	"bankruptcy": -1, "debt": -0.5, "delay": -0.5, "delayed": -0.5, "struggle": -1,
	"struggles": -1, "outage": -1, "penalty": -1, "criticism": -1, "criticized": -1,
}

// LLMScorer asks a model for a score and falls back to the lexicon when
// the model fails or answers with something unparseable.
type LLMScorer struct {
	gen    Generator
	logger *slog.Logger
}

// NewLLMScorer creates an LLMScorer.
func NewLLMScorer(gen Generator, logger *slog.Logger) *LLMScorer {
	return &LLMScorer{gen: gen, logger: logger.With("component", "llm_sentiment")}
}

// Polarity implements Scorer.
func (s *LLMScorer) Polarity(ctx context.Context, in string) (float64, error) {
	resp, err := s.gen.Generate(ctx, fmt.Sprintf(sentimentPrompt, text.Truncate(in, 2000)))
	if err != nil {
		s.logger.Warn("sentiment analysis failed, using lexicon", "error", err)
		return lexiconPolarity(in), nil
	}

	var out struct {
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp)), &out); err != nil || out.Score == nil {
		s.logger.Warn("unparseable sentiment response, using lexicon", "response", resp)
		return lexiconPolarity(in), nil
	}

	score := *out.Score
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score, nil
}
