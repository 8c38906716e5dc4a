package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and CLI flags.
// Priority (highest to lowest): CLI flags > env vars > config file > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("NEWSLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("newslens")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".newslens"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing file is fine unless one was named explicitly.
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyProviderKeys(&cfg.LLM.Local)
	applyProviderKeys(&cfg.LLM.External)

	return cfg, nil
}

// applyProviderKeys fills a missing API key from the provider's
// conventional environment variable.
func applyProviderKeys(p *ProviderConfig) {
	if p.APIKey != "" {
		return
	}
	switch p.Provider {
	case "openai":
		p.APIKey = os.Getenv("OPENAI_API_KEY")
	case "gemini":
		p.APIKey = os.Getenv("GEMINI_API_KEY")
		if p.APIKey == "" {
			p.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	}
}

// setDefaults registers default values in viper so env overrides bind.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.allow_origins", cfg.Server.AllowOrigins)
	v.SetDefault("server.enable_ui", cfg.Server.EnableUI)

	v.SetDefault("engine.default_limit", cfg.Engine.DefaultLimit)
	v.SetDefault("engine.max_limit", cfg.Engine.MaxLimit)
	v.SetDefault("engine.external_max_limit", cfg.Engine.ExternalMaxLimit)
	v.SetDefault("engine.politeness_delay", cfg.Engine.PolitenessDelay)
	v.SetDefault("engine.request_timeout", cfg.Engine.RequestTimeout)
	v.SetDefault("engine.max_retries", cfg.Engine.MaxRetries)
	v.SetDefault("engine.retry_delay", cfg.Engine.RetryDelay)
	v.SetDefault("engine.min_static_text", cfg.Engine.MinStaticText)
	v.SetDefault("engine.user_agents", cfg.Engine.UserAgents)

	v.SetDefault("search.provider", cfg.Search.Provider)
	v.SetDefault("search.base_url", cfg.Search.BaseURL)
	v.SetDefault("search.rss_url", cfg.Search.RSSURL)
	v.SetDefault("search.exclude_domain", cfg.Search.ExcludeDomain)
	v.SetDefault("search.max_pages", cfg.Search.MaxPages)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)
	v.SetDefault("fetcher.headless", cfg.Fetcher.Headless)

	v.SetDefault("proxy.enabled", cfg.Proxy.Enabled)
	v.SetDefault("proxy.rotation", cfg.Proxy.Rotation)

	v.SetDefault("summarizer.local", cfg.Summarizer.Local)
	v.SetDefault("summarizer.chunk_size", cfg.Summarizer.ChunkSize)
	v.SetDefault("summarizer.min_words", cfg.Summarizer.MinWords)
	v.SetDefault("summarizer.max_length", cfg.Summarizer.MaxLength)
	v.SetDefault("summarizer.min_length", cfg.Summarizer.MinLength)
	v.SetDefault("summarizer.max_sentences", cfg.Summarizer.MaxSentences)
	v.SetDefault("summarizer.max_input_chars", cfg.Summarizer.MaxInputChars)

	for name, p := range map[string]ProviderConfig{"local": cfg.LLM.Local, "external": cfg.LLM.External} {
		v.SetDefault("llm."+name+".enabled", p.Enabled)
		v.SetDefault("llm."+name+".provider", p.Provider)
		v.SetDefault("llm."+name+".model", p.Model)
		v.SetDefault("llm."+name+".endpoint", p.Endpoint)
		v.SetDefault("llm."+name+".api_key", p.APIKey)
	}
	v.SetDefault("llm.timeout", cfg.LLM.Timeout)

	v.SetDefault("sentiment.scorer", cfg.Sentiment.Scorer)

	v.SetDefault("speech.audio_dir", cfg.Speech.AudioDir)
	v.SetDefault("speech.default_lang", cfg.Speech.DefaultLang)
	v.SetDefault("speech.tts_url", cfg.Speech.TTSURL)
	v.SetDefault("speech.translate_url", cfg.Speech.TranslateURL)
	v.SetDefault("speech.cleanup_interval", cfg.Speech.CleanupInterval)
	v.SetDefault("speech.max_age", cfg.Speech.MaxAge)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.database", cfg.Storage.Database)
	v.SetDefault("storage.collection", cfg.Storage.Collection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
