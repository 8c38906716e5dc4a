package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/IshaanNene/NewsLens/internal/types"
)

// GeminiGenerator uses Google's Gemini models. It backs the external
// summarization path.
type GeminiGenerator struct {
	model   string
	apiKey  string
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiGenerator creates a Gemini generator.
func NewGeminiGenerator(model, apiKey string, timeout time.Duration, logger *slog.Logger) *GeminiGenerator {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiGenerator{
		model:   model,
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.With("component", "gemini"),
	}
}

// Name implements Generator.
func (g *GeminiGenerator) Name() string { return "gemini" }

// sharedClient creates the SDK client on first use. A failed attempt is
// not cached.
func (g *GeminiGenerator) sharedClient() (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

// Close releases the SDK client if one was created.
func (g *GeminiGenerator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", types.ErrNoCredentials
	}
	client, err := g.sharedClient()
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		break
	}
	if b.Len() == 0 {
		return "", errors.New("gemini: empty response")
	}
	return cleanResponse(b.String()), nil
}
