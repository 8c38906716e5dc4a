// Package ai wraps the language models used for summarization, sentiment
// scoring and cross-article analysis.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IshaanNene/NewsLens/internal/config"
)

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// NewGenerator builds the generator for one provider entry. A disabled
// entry yields (nil, nil).
func NewGenerator(p config.ProviderConfig, timeout time.Duration, logger *slog.Logger) (Generator, error) {
	if !p.Enabled {
		return nil, nil
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	switch p.Provider {
	case "ollama":
		return NewOllamaGenerator(p.Endpoint, p.Model, timeout, logger), nil
	case "openai":
		return NewOpenAIGenerator(p.Endpoint, p.Model, p.APIKey, timeout, logger), nil
	case "gemini":
		return NewGeminiGenerator(p.Model, p.APIKey, timeout, logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", p.Provider)
	}
}

// extractJSON tries to find a JSON object in a model response.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return "{}"
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return "{}"
}

// cleanResponse strips markdown code fences and surrounding whitespace.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
