package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/NewsLens/internal/config"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "newslens",
		Short: "NewsLens: company news summaries with sentiment",
		Long: `NewsLens finds recent news articles about a company, summarizes each one,
labels its sentiment and tallies the results.

Surfaces:
  serve     HTTP API and web UI
  analyze   one-off analysis printed to the terminal, optionally exported
  speak     text-to-speech with translation`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(speakCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration, applying overrides
// before validation.
func loadConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, o := range overrides {
		o(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("NewsLens %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Server:\n")
			fmt.Printf("  Address:           %s\n", cfg.Server.Addr())
			fmt.Printf("  Web UI:            %v\n", cfg.Server.EnableUI)
			fmt.Printf("\nEngine:\n")
			fmt.Printf("  Default Limit:     %d\n", cfg.Engine.DefaultLimit)
			fmt.Printf("  Max Limit:         %d (external %d)\n", cfg.Engine.MaxLimit, cfg.Engine.ExternalMaxLimit)
			fmt.Printf("  Politeness Delay:  %s\n", cfg.Engine.PolitenessDelay)
			fmt.Printf("  Request Timeout:   %s\n", cfg.Engine.RequestTimeout)
			fmt.Printf("  Max Retries:       %d\n", cfg.Engine.MaxRetries)
			fmt.Printf("\nSearch:\n")
			fmt.Printf("  Provider:          %s\n", cfg.Search.Provider)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Type:              %s\n", cfg.Fetcher.Type)
			fmt.Printf("  Proxy Enabled:     %v (%d configured)\n", cfg.Proxy.Enabled, len(cfg.Proxy.URLs))
			fmt.Printf("\nModels:\n")
			fmt.Printf("  Local Summarizer:  %s\n", cfg.Summarizer.Local)
			fmt.Printf("  Local LLM:         %s %s (enabled %v)\n", cfg.LLM.Local.Provider, cfg.LLM.Local.Model, cfg.LLM.Local.Enabled)
			fmt.Printf("  External LLM:      %s %s (enabled %v, key set %v)\n",
				cfg.LLM.External.Provider, cfg.LLM.External.Model, cfg.LLM.External.Enabled, cfg.LLM.External.APIKey != "")
			fmt.Printf("  Sentiment Scorer:  %s\n", cfg.Sentiment.Scorer)
			fmt.Printf("\nSpeech:\n")
			fmt.Printf("  Audio Dir:         %s\n", cfg.Speech.AudioDir)
			fmt.Printf("  Default Language:  %s\n", cfg.Speech.DefaultLang)
			fmt.Printf("  Max Age:           %s\n", cfg.Speech.MaxAge)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Path:       %s\n", cfg.Storage.OutputPath)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Path:              %s\n", cfg.Metrics.Path)
			return nil
		},
	}
}

// setupLogger creates a structured logger from the logging config. The
// --verbose flag forces debug level.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
