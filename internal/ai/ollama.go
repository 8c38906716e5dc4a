package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OllamaGenerator talks to a local Ollama server. It is the default
// bounded-context model for chunk summaries.
type OllamaGenerator struct {
	endpoint string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

// NewOllamaGenerator creates a generator for an Ollama endpoint.
func NewOllamaGenerator(endpoint, model string, timeout time.Duration, logger *slog.Logger) *OllamaGenerator {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	return &OllamaGenerator{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With("component", "ollama"),
	}
}

// Name implements Generator.
func (g *OllamaGenerator) Name() string { return "ollama" }

// Generate implements Generator.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  g.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": 0,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama: %s", result.Error)
	}

	g.logger.Debug("generation complete", "model", g.model, "duration", time.Since(start))
	return cleanResponse(result.Response), nil
}
