package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/IshaanNene/NewsLens/internal/types"
)

// OpenAIGenerator uses the chat completions API of OpenAI or any
// compatible server.
type OpenAIGenerator struct {
	model   string
	apiKey  string
	opts    []option.RequestOption
	timeout time.Duration
	logger  *slog.Logger
}

// NewOpenAIGenerator creates a generator. An empty baseURL targets OpenAI.
func NewOpenAIGenerator(baseURL, model, apiKey string, timeout time.Duration, logger *slog.Logger) *OpenAIGenerator {
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIGenerator{
		model:   model,
		apiKey:  apiKey,
		opts:    opts,
		timeout: timeout,
		logger:  logger.With("component", "openai"),
	}
}

// Name implements Generator.
func (g *OpenAIGenerator) Name() string { return "openai" }

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", types.ErrNoCredentials
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client := openai.NewClient(g.opts...)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return cleanResponse(resp.Choices[0].Message.Content), nil
}
