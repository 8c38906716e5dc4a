// Package newslens provides a public API for embedding NewsLens as a library.
//
// Example usage:
//
//	client, err := newslens.New(
//	    newslens.WithLimit(5),
//	    newslens.WithExternal(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	report, err := client.Analyze(ctx, "Tesla")
//	fmt.Println(report.Distribution)
package newslens

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/engine"
	"github.com/IshaanNene/NewsLens/internal/storage"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// Report is the result of analyzing one company.
type Report = types.Report

// Article is a single processed news article.
type Article = types.Article

// Sentiment labels.
const (
	Positive = types.SentimentPositive
	Negative = types.SentimentNegative
	Neutral  = types.SentimentNeutral
)

// ErrNoArticles is returned, wrapped, when no article about the company
// survives filtering.
var ErrNoArticles = types.ErrNoArticles

// Discoverer finds candidate article URLs for a company. Implementations
// replace the built-in search provider.
type Discoverer interface {
	Name() string
	Discover(ctx context.Context, company string, skip, count int) ([]string, error)
}

// Client is the high-level API for running analyses.
type Client struct {
	cfg    *config.Config
	engine *engine.Engine
	logger *slog.Logger
	opts   settings
}

type settings struct {
	limit      int
	skip       int
	external   bool
	overview   bool
	analysis   bool
	export     bool
	discoverer Discoverer
	logger     *slog.Logger
	configure  []func(*config.Config)
}

// Option configures a Client.
type Option func(*settings)

// WithConfig replaces the default configuration. Options that touch the
// configuration are applied on top of it.
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) {
		s.configure = append([]func(*config.Config){func(c *config.Config) { *c = *cfg }}, s.configure...)
	}
}

// WithLogger sets the logger. The default discards everything below warn.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithLimit sets the number of articles per analysis.
func WithLimit(n int) Option {
	return func(s *settings) { s.limit = n }
}

// WithSkip sets the search result offset.
func WithSkip(n int) Option {
	return func(s *settings) { s.skip = n }
}

// WithExternal tries the external model before local summarization.
func WithExternal(on bool) Option {
	return func(s *settings) { s.external = on }
}

// WithOverview adds the cross-article markdown overview to each report.
func WithOverview(on bool) Option {
	return func(s *settings) { s.overview = on }
}

// WithAnalysis adds the comparative markdown analysis to each report.
func WithAnalysis(on bool) Option {
	return func(s *settings) { s.analysis = on }
}

// WithDiscoverer replaces the configured search provider.
func WithDiscoverer(d Discoverer) Option {
	return func(s *settings) { s.discoverer = d }
}

// WithDelay sets the politeness delay between article fetches.
func WithDelay(d time.Duration) Option {
	return func(s *settings) {
		s.configure = append(s.configure, func(c *config.Config) { c.Engine.PolitenessDelay = d })
	}
}

// WithOutput exports every report with the given storage backend
// (json, jsonl, csv, mongodb) under path.
func WithOutput(format, path string) Option {
	return func(s *settings) {
		s.export = true
		s.configure = append(s.configure, func(c *config.Config) {
			c.Storage.Type = format
			c.Storage.OutputPath = path
		})
	}
}

// WithProxy routes fetches through the given proxies.
func WithProxy(urls ...string) Option {
	return func(s *settings) {
		s.configure = append(s.configure, func(c *config.Config) {
			c.Proxy.Enabled = true
			c.Proxy.URLs = urls
		})
	}
}

// New creates a Client.
func New(opts ...Option) (*Client, error) {
	var s settings
	for _, o := range opts {
		o(&s)
	}

	cfg := config.DefaultConfig()
	for _, fn := range s.configure {
		fn(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger := s.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	eng, err := engine.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	if s.discoverer != nil {
		eng.SetDiscoverer(s.discoverer)
	}

	return &Client{cfg: cfg, engine: eng, logger: logger, opts: s}, nil
}

// Analyze collects, summarizes and labels articles about company. When no
// article survives, the empty report is returned with an error wrapping
// ErrNoArticles.
func (c *Client) Analyze(ctx context.Context, company string) (*Report, error) {
	report, err := c.engine.Analyze(ctx, engine.Query{
		Company:     company,
		Limit:       c.opts.limit,
		Skip:        c.opts.skip,
		UseExternal: c.opts.external,
		Overview:    c.opts.overview,
		Analysis:    c.opts.analysis,
	})
	if err != nil {
		return report, err
	}

	if c.opts.export {
		if err := c.Export(ctx, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

// Export writes report with the configured storage backend.
func (c *Client) Export(ctx context.Context, report *Report) error {
	if report == nil {
		return errors.New("newslens: nil report")
	}
	s, err := storage.New(c.cfg.Storage, c.logger)
	if err != nil {
		return err
	}
	return storage.Export(ctx, s, report)
}

// Stats returns the client's counters keyed by metric name.
func (c *Client) Stats() map[string]int64 {
	return c.engine.Metrics().Snapshot()
}

// Close releases network resources.
func (c *Client) Close() error {
	return c.engine.Close()
}
