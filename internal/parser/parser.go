// Package parser turns fetched pages into search result links and
// article text.
package parser

import (
	"log/slog"

	"github.com/IshaanNene/NewsLens/internal/types"
)

// Content is the readable part of an article page.
type Content struct {
	Title    string
	Text     string
	SiteName string
	Method   string // readability, paragraphs, pdf
}

// Extractor pulls article content out of a fetched response.
type Extractor struct {
	minText int
	logger  *slog.Logger
}

// NewExtractor creates an Extractor. minText is the visible-text length a
// page needs to count as static.
func NewExtractor(minText int, logger *slog.Logger) *Extractor {
	if minText <= 0 {
		minText = DefaultMinStaticText
	}
	return &Extractor{
		minText: minText,
		logger:  logger.With("component", "extractor"),
	}
}

// IsStatic applies the static-page heuristic with the extractor's threshold.
func (e *Extractor) IsStatic(resp *types.Response) bool {
	if resp.IsPDF() {
		c, err := ExtractPDF(resp.Body)
		return err == nil && len(c.Text) >= e.minText
	}
	return IsStatic(resp, e.minText)
}
