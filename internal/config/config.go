package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for NewsLens.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     yaml:"server"`
	Engine     EngineConfig     `mapstructure:"engine"     yaml:"engine"`
	Search     SearchConfig     `mapstructure:"search"     yaml:"search"`
	Fetcher    FetcherConfig    `mapstructure:"fetcher"    yaml:"fetcher"`
	Proxy      ProxyConfig      `mapstructure:"proxy"      yaml:"proxy"`
	Summarizer SummarizerConfig `mapstructure:"summarizer" yaml:"summarizer"`
	LLM        LLMConfig        `mapstructure:"llm"        yaml:"llm"`
	Sentiment  SentimentConfig  `mapstructure:"sentiment"  yaml:"sentiment"`
	Speech     SpeechConfig     `mapstructure:"speech"     yaml:"speech"`
	Storage    StorageConfig    `mapstructure:"storage"    yaml:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"    yaml:"metrics"`
}

// ServerConfig controls the HTTP API and web UI.
type ServerConfig struct {
	Host         string        `mapstructure:"host"          yaml:"host"`
	Port         int           `mapstructure:"port"          yaml:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	AllowOrigins []string      `mapstructure:"allow_origins" yaml:"allow_origins"`
	EnableUI     bool          `mapstructure:"enable_ui"     yaml:"enable_ui"`
}

// EngineConfig controls article collection.
type EngineConfig struct {
	DefaultLimit     int           `mapstructure:"default_limit"      yaml:"default_limit"`
	MaxLimit         int           `mapstructure:"max_limit"          yaml:"max_limit"`
	ExternalMaxLimit int           `mapstructure:"external_max_limit" yaml:"external_max_limit"`
	PolitenessDelay  time.Duration `mapstructure:"politeness_delay"   yaml:"politeness_delay"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"    yaml:"request_timeout"`
	MaxRetries       int           `mapstructure:"max_retries"        yaml:"max_retries"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"        yaml:"retry_delay"`
	MinStaticText    int           `mapstructure:"min_static_text"    yaml:"min_static_text"`
	UserAgents       []string      `mapstructure:"user_agents"        yaml:"user_agents"`
}

// SearchConfig controls link discovery.
type SearchConfig struct {
	Provider      string   `mapstructure:"provider"       yaml:"provider"` // google, rss
	BaseURL       string   `mapstructure:"base_url"       yaml:"base_url"`
	RSSURL        string   `mapstructure:"rss_url"        yaml:"rss_url"`
	ExcludeDomain []string `mapstructure:"exclude_domain" yaml:"exclude_domain"`
	MaxPages      int      `mapstructure:"max_pages"      yaml:"max_pages"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	Headless        bool          `mapstructure:"headless"          yaml:"headless"`
}

// ProxyConfig controls proxy rotation.
type ProxyConfig struct {
	Enabled  bool     `mapstructure:"enabled"  yaml:"enabled"`
	Rotation string   `mapstructure:"rotation" yaml:"rotation"`
	URLs     []string `mapstructure:"urls"     yaml:"urls"`
}

// SummarizerConfig controls the chunked summarization reducer.
type SummarizerConfig struct {
	Local         string `mapstructure:"local"           yaml:"local"` // model, extractive
	ChunkSize     int    `mapstructure:"chunk_size"      yaml:"chunk_size"`
	MinWords      int    `mapstructure:"min_words"       yaml:"min_words"`
	MaxLength     int    `mapstructure:"max_length"      yaml:"max_length"`
	MinLength     int    `mapstructure:"min_length"      yaml:"min_length"`
	MaxSentences  int    `mapstructure:"max_sentences"   yaml:"max_sentences"`
	MaxInputChars int    `mapstructure:"max_input_chars" yaml:"max_input_chars"`
}

// LLMConfig controls the model providers. Local is the bounded-context
// model used for chunk summaries; External is the remote model tried first.
type LLMConfig struct {
	Local    ProviderConfig `mapstructure:"local"    yaml:"local"`
	External ProviderConfig `mapstructure:"external" yaml:"external"`
	Timeout  time.Duration  `mapstructure:"timeout"  yaml:"timeout"`
}

// ProviderConfig selects one model endpoint.
type ProviderConfig struct {
	Enabled  bool   `mapstructure:"enabled"  yaml:"enabled"`
	Provider string `mapstructure:"provider" yaml:"provider"` // ollama, openai, gemini
	Model    string `mapstructure:"model"    yaml:"model"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey   string `mapstructure:"api_key"  yaml:"api_key"`
}

// SentimentConfig selects the polarity scorer.
type SentimentConfig struct {
	Scorer string `mapstructure:"scorer" yaml:"scorer"` // lexicon, llm
}

// SpeechConfig controls translation, synthesis and audio cleanup.
type SpeechConfig struct {
	AudioDir        string        `mapstructure:"audio_dir"        yaml:"audio_dir"`
	DefaultLang     string        `mapstructure:"default_lang"     yaml:"default_lang"`
	TTSURL          string        `mapstructure:"tts_url"          yaml:"tts_url"`
	TranslateURL    string        `mapstructure:"translate_url"    yaml:"translate_url"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
	MaxAge          time.Duration `mapstructure:"max_age"          yaml:"max_age"`
}

// StorageConfig controls report export.
type StorageConfig struct {
	Type       string `mapstructure:"type"        yaml:"type"` // json, jsonl, csv, mongodb; comma-separated for several
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
	MongoURI   string `mapstructure:"mongo_uri"   yaml:"mongo_uri"`
	Database   string `mapstructure:"database"    yaml:"database"`
	Collection string `mapstructure:"collection"  yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Minute,
			AllowOrigins: []string{"*"},
			EnableUI:     true,
		},
		Engine: EngineConfig{
			DefaultLimit:     5,
			MaxLimit:         10,
			ExternalMaxLimit: 3,
			PolitenessDelay:  1 * time.Second,
			RequestTimeout:   5 * time.Second,
			MaxRetries:       0,
			RetryDelay:       2 * time.Second,
			MinStaticText:    500,
			UserAgents: []string{
				"Mozilla/5.0",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Search: SearchConfig{
			Provider:      "google",
			BaseURL:       "https://www.google.com/search",
			RSSURL:        "https://news.google.com/rss/search",
			ExcludeDomain: []string{"google.com"},
			MaxPages:      10,
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			Headless:        true,
		},
		Proxy: ProxyConfig{
			Enabled:      false,
			Rotation:     "round_robin",
		},
		Summarizer: SummarizerConfig{
			Local:         "model",
			ChunkSize:     1000,
			MinWords:      50,
			MaxLength:     100,
			MinLength:     30,
			MaxSentences:  3,
			MaxInputChars: 12000,
		},
		LLM: LLMConfig{
			Local: ProviderConfig{
				Enabled:  true,
				Provider: "ollama",
				Model:    "llama3.2",
				Endpoint: "http://localhost:11434",
			},
			External: ProviderConfig{
				Enabled:  true,
				Provider: "gemini",
				Model:    "gemini-1.5-flash",
			},
			Timeout: 2 * time.Minute,
		},
		Sentiment: SentimentConfig{
			Scorer: "lexicon",
		},
		Speech: SpeechConfig{
			AudioDir:        "./audio",
			DefaultLang:     "hi",
			TTSURL:          "https://translate.google.com/translate_tts",
			TranslateURL:    "https://translate.googleapis.com/translate_a/single",
			CleanupInterval: 10 * time.Minute,
			MaxAge:          30 * time.Minute,
		},
		Storage: StorageConfig{
			Type:       "json",
			OutputPath: "./output",
			Database:   "newslens",
			Collection: "reports",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// StorageTypes splits a storage type list such as "json, csv" into
// lower-cased backend names.
func StorageTypes(raw string) []string {
	var kinds []string
	for _, part := range strings.Split(raw, ",") {
		if kind := strings.ToLower(strings.TrimSpace(part)); kind != "" {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
