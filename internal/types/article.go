package types

import (
	"fmt"
	"strings"
	"time"
)

// Sentiment is the polarity label attached to an article.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// ParseSentiment maps a case-insensitive label back to a Sentiment.
func ParseSentiment(s string) (Sentiment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return SentimentPositive, true
	case "negative":
		return SentimentNegative, true
	case "neutral":
		return SentimentNeutral, true
	}
	return "", false
}

// SummaryErrorText is the placeholder summary used when summarization fails.
const SummaryErrorText = "Error in summarization"

// Article is a single processed news article.
type Article struct {
	// Title is the article headline.
	Title string `json:"Title" bson:"title"`

	// Summary is the reduced summary text.
	Summary string `json:"Summary" bson:"summary"`

	// URL is the source page the article was extracted from.
	URL string `json:"URL" bson:"url"`

	// Sentiment is set by the sentiment stage.
	Sentiment Sentiment `json:"Sentiment" bson:"sentiment"`

	// Audio is the file name of a spoken rendering, when one was requested.
	Audio string `json:"Audio,omitempty" bson:"audio,omitempty"`
}

// HasSummary reports whether the article carries a usable summary.
func (a *Article) HasSummary() bool {
	return a.Summary != "" && a.Summary != SummaryErrorText
}

// SentimentSummary is the per-batch tally of sentiment labels.
type SentimentSummary struct {
	Positive int `json:"Positive" bson:"positive"`
	Negative int `json:"Negative" bson:"negative"`
	Neutral  int `json:"Neutral" bson:"neutral"`
}

// Add counts one label. Unknown labels count as neutral.
func (s *SentimentSummary) Add(label Sentiment) {
	switch label {
	case SentimentPositive:
		s.Positive++
	case SentimentNegative:
		s.Negative++
	default:
		s.Neutral++
	}
}

// Total returns the number of labels counted.
func (s SentimentSummary) Total() int {
	return s.Positive + s.Negative + s.Neutral
}

func (s SentimentSummary) String() string {
	return fmt.Sprintf("Positive: %d, Negative: %d, Neutral: %d", s.Positive, s.Negative, s.Neutral)
}

// Report is the result of analyzing one company.
type Report struct {
	Company      string           `json:"Company" bson:"company"`
	Articles     []Article        `json:"Articles" bson:"articles"`
	Distribution SentimentSummary `json:"Sentiment Distribution" bson:"distribution"`
	Overview     string           `json:"Overview,omitempty" bson:"overview,omitempty"`
	Analysis     string           `json:"Analysis,omitempty" bson:"analysis,omitempty"`
	GeneratedAt  time.Time        `json:"GeneratedAt" bson:"generated_at"`
}
