package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}

	if cfg.Engine.DefaultLimit < 1 {
		return fmt.Errorf("engine.default_limit must be >= 1, got %d", cfg.Engine.DefaultLimit)
	}
	if cfg.Engine.MaxLimit < cfg.Engine.DefaultLimit {
		return fmt.Errorf("engine.max_limit (%d) must be >= engine.default_limit (%d)", cfg.Engine.MaxLimit, cfg.Engine.DefaultLimit)
	}
	if cfg.Engine.ExternalMaxLimit < 1 {
		return fmt.Errorf("engine.external_max_limit must be >= 1, got %d", cfg.Engine.ExternalMaxLimit)
	}
	if cfg.Engine.RequestTimeout <= 0 {
		return fmt.Errorf("engine.request_timeout must be > 0")
	}
	if cfg.Engine.PolitenessDelay < 0 {
		return fmt.Errorf("engine.politeness_delay must be >= 0")
	}
	if cfg.Engine.MaxRetries < 0 {
		return fmt.Errorf("engine.max_retries must be >= 0, got %d", cfg.Engine.MaxRetries)
	}

	if cfg.Search.Provider != "google" && cfg.Search.Provider != "rss" {
		return fmt.Errorf("search.provider must be 'google' or 'rss', got %q", cfg.Search.Provider)
	}
	if err := ValidateURL(cfg.Search.BaseURL); err != nil {
		return fmt.Errorf("search.base_url: %w", err)
	}

	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}

	if cfg.Proxy.Enabled {
		if cfg.Proxy.Rotation != "round_robin" && cfg.Proxy.Rotation != "random" {
			return fmt.Errorf("proxy.rotation must be 'round_robin' or 'random', got %q", cfg.Proxy.Rotation)
		}
		for _, proxyURL := range cfg.Proxy.URLs {
			if _, err := url.Parse(proxyURL); err != nil {
				return fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
			}
		}
	}

	if cfg.Summarizer.Local != "model" && cfg.Summarizer.Local != "extractive" {
		return fmt.Errorf("summarizer.local must be 'model' or 'extractive', got %q", cfg.Summarizer.Local)
	}
	if cfg.Summarizer.ChunkSize < 1 {
		return fmt.Errorf("summarizer.chunk_size must be >= 1, got %d", cfg.Summarizer.ChunkSize)
	}
	if cfg.Summarizer.MinLength > cfg.Summarizer.MaxLength {
		return fmt.Errorf("summarizer.min_length (%d) must be <= summarizer.max_length (%d)", cfg.Summarizer.MinLength, cfg.Summarizer.MaxLength)
	}

	validProviders := map[string]bool{"ollama": true, "openai": true, "gemini": true}
	for name, p := range map[string]ProviderConfig{"local": cfg.LLM.Local, "external": cfg.LLM.External} {
		if p.Enabled && !validProviders[p.Provider] {
			return fmt.Errorf("llm.%s.provider %q is not supported (valid: ollama, openai, gemini)", name, p.Provider)
		}
	}

	if cfg.Sentiment.Scorer != "lexicon" && cfg.Sentiment.Scorer != "llm" {
		return fmt.Errorf("sentiment.scorer must be 'lexicon' or 'llm', got %q", cfg.Sentiment.Scorer)
	}

	if cfg.Speech.AudioDir == "" {
		return fmt.Errorf("speech.audio_dir must not be empty")
	}
	if cfg.Speech.MaxAge <= 0 {
		return fmt.Errorf("speech.max_age must be > 0")
	}

	validStorageTypes := map[string]bool{
		"json": true, "jsonl": true, "csv": true, "mongodb": true,
	}
	kinds := StorageTypes(cfg.Storage.Type)
	if len(kinds) == 0 {
		return fmt.Errorf("storage.type must not be empty")
	}
	for _, kind := range kinds {
		if !validStorageTypes[kind] {
			return fmt.Errorf("storage.type %q is not supported (valid: json, jsonl, csv, mongodb)", kind)
		}
		if kind == "mongodb" && cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for mongodb storage")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
