// Package engine runs the article acquisition and summarization flow for
// one company: discover links, fetch each page once, keep static pages,
// extract, summarize, label, and tally.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IshaanNene/NewsLens/internal/ai"
	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/fetcher"
	"github.com/IshaanNene/NewsLens/internal/observability"
	"github.com/IshaanNene/NewsLens/internal/parser"
	"github.com/IshaanNene/NewsLens/internal/pipeline"
	"github.com/IshaanNene/NewsLens/internal/search"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// Engine is the per-company analysis orchestrator. It holds no state
// between calls other than metrics; every Collect builds its own link set
// and pipeline.
type Engine struct {
	cfg        *config.Config
	logger     *slog.Logger
	discoverer search.Discoverer
	fetcher    fetcher.Fetcher
	extractor  *parser.Extractor
	reducer    *ai.Reducer
	scorer     ai.Scorer
	analyst    *ai.Analyst
	metrics    *observability.Metrics
	models     *ai.Components
}

// New creates an Engine with the lexicon scorer and fresh metrics.
// Collaborators are attached with the Set methods or built with
// NewFromConfig.
func New(cfg *config.Config, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		logger:    logger.With("component", "engine"),
		extractor: parser.NewExtractor(cfg.Engine.MinStaticText, logger),
		scorer:    ai.LexiconScorer{},
		analyst:   ai.NewAnalyst(nil, 0),
		metrics:   observability.NewMetrics(logger),
	}
}

// NewFromConfig builds the fetcher, discoverer and model components named
// by cfg and returns a ready Engine.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	d, err := search.New(cfg, f, logger)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create discoverer: %w", err)
	}
	comps, err := ai.Build(cfg, logger)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create models: %w", err)
	}

	e := New(cfg, logger)
	e.SetFetcher(f)
	e.SetDiscoverer(d)
	e.SetReducer(comps.Reducer)
	e.SetScorer(comps.Scorer)
	e.SetAnalyst(comps.Analyst)
	e.models = comps
	return e, nil
}

// SetFetcher sets the page fetcher.
func (e *Engine) SetFetcher(f fetcher.Fetcher) { e.fetcher = f }

// SetDiscoverer sets the link discoverer.
func (e *Engine) SetDiscoverer(d search.Discoverer) { e.discoverer = d }

// SetReducer sets the summarization reducer.
func (e *Engine) SetReducer(r *ai.Reducer) { e.reducer = r }

// SetScorer sets the sentiment scorer.
func (e *Engine) SetScorer(s ai.Scorer) { e.scorer = s }

// SetAnalyst sets the cross-article analyst.
func (e *Engine) SetAnalyst(a *ai.Analyst) { e.analyst = a }

// SetMetrics replaces the metrics sink, usually with one shared by the
// HTTP server.
func (e *Engine) SetMetrics(m *observability.Metrics) { e.metrics = m }

// Analyst returns the cross-article analyst.
func (e *Engine) Analyst() *ai.Analyst { return e.analyst }

// Metrics returns the engine's metrics sink.
func (e *Engine) Metrics() *observability.Metrics { return e.metrics }

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// Close releases the fetcher and any model clients.
func (e *Engine) Close() error {
	var errs []error
	if e.fetcher != nil {
		errs = append(errs, e.fetcher.Close())
	}
	if e.models != nil {
		errs = append(errs, e.models.Close())
	}
	return errors.Join(errs...)
}

// Collect gathers up to q.Limit processed articles about q.Company.
// Articles are processed one at a time with the politeness delay between
// page fetches. Per-article failures are logged and skipped; only
// discovery failure and cancellation abort the batch. On cancellation the
// articles gathered so far are returned with the context error.
func (e *Engine) Collect(ctx context.Context, q Query) ([]types.Article, error) {
	company := strings.TrimSpace(q.Company)
	if company == "" {
		return nil, types.ErrInvalidCompany
	}
	if e.discoverer == nil || e.fetcher == nil || e.reducer == nil {
		return nil, errors.New("engine: discoverer, fetcher and reducer must be set")
	}

	limit := ClampLimit(&e.cfg.Engine, q.Limit, q.UseExternal)
	skip := q.Skip
	if skip < 0 {
		skip = 0
	}

	// Twice the budget is requested since non-static pages are filtered out.
	links, err := e.discoverer.Discover(ctx, company, skip, limit*2)
	if err != nil && len(links) == 0 {
		return nil, fmt.Errorf("discover links via %s: %w", e.discoverer.Name(), err)
	}
	e.metrics.LinksDiscovered.Add(int64(len(links)))

	e.logger.Info("collecting articles",
		"company", company,
		"limit", limit,
		"skip", skip,
		"external", q.UseExternal,
		"candidates", len(links),
	)

	chain := pipeline.Default(e.scorer, e.logger)
	seen := NewLinkSet(len(links))
	articles := make([]types.Article, 0, limit)
	fetched := 0

	for _, link := range links {
		if len(articles) >= limit {
			break
		}
		if !seen.Add(link) {
			continue
		}
		if fetched > 0 {
			if err := sleepCtx(ctx, e.cfg.Engine.PolitenessDelay); err != nil {
				return articles, err
			}
		} else if err := ctx.Err(); err != nil {
			return articles, err
		}
		fetched++

		art, err := e.processLink(ctx, chain, link, q.UseExternal)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return articles, ctxErr
			}
			e.logger.Debug("link skipped", "url", link, "error", err)
			continue
		}
		if art == nil {
			e.metrics.ArticlesDropped.Add(1)
			continue
		}
		articles = append(articles, *art)
	}

	e.logger.Info("collection complete", "company", company, "articles", len(articles), "fetched", fetched)
	return articles, nil
}

// processLink fetches one page once and reuses the response for the static
// check and extraction. A nil article with a nil error means the pipeline
// dropped it.
func (e *Engine) processLink(ctx context.Context, chain *pipeline.Pipeline, link string, useExternal bool) (*types.Article, error) {
	req, err := types.NewRequest(link, types.PageArticle)
	if err != nil {
		return nil, err
	}
	req.MaxRetries = e.cfg.Engine.MaxRetries

	resp, err := fetcher.FetchWithRetry(ctx, e.fetcher, req, e.cfg.Engine.RetryDelay, e.logger)
	if err != nil {
		e.metrics.FetchFailures.Add(1)
		return nil, err
	}
	e.metrics.PagesFetched.Add(1)
	e.metrics.BytesDownloaded.Add(int64(len(resp.Body)))

	if !e.extractor.IsStatic(resp) {
		e.metrics.PagesNonStatic.Add(1)
		return nil, types.ErrNotStatic
	}

	content, err := e.extractor.Extract(resp)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content.Title) == "" {
		return nil, nil
	}

	out := e.reducer.Reduce(ctx, content.Title, content.Text, useExternal)
	switch out.Method {
	case ai.MethodExternal:
		e.metrics.ExternalSummaries.Add(1)
	case ai.MethodLocal:
		e.metrics.ArticlesSummarized.Add(1)
		if out.ExternalErr != nil {
			e.metrics.LocalFallbacks.Add(1)
		}
	case ai.MethodFailed:
		e.metrics.SummarizationErrors.Add(1)
	}

	url := link
	if resp.FinalURL != "" {
		url = resp.FinalURL
	}
	return chain.Process(ctx, &types.Article{
		Title:   out.Title,
		Summary: out.Summary,
		URL:     url,
	})
}

// Analyze collects articles and tallies their sentiment into a report.
// When no article survives, the report is returned with an error wrapping
// types.ErrNoArticles. Overview and analysis failures are logged and leave
// the corresponding field empty.
func (e *Engine) Analyze(ctx context.Context, q Query) (*types.Report, error) {
	articles, err := e.Collect(ctx, q)
	if err != nil {
		return nil, err
	}

	report := &types.Report{
		Company:      strings.TrimSpace(q.Company),
		Articles:     articles,
		Distribution: ai.Tally(articles),
		GeneratedAt:  time.Now().UTC(),
	}
	if len(articles) == 0 {
		return report, fmt.Errorf("%w for %s", types.ErrNoArticles, report.Company)
	}

	if q.Overview {
		if md, err := e.analyst.Overview(ctx, articles); err != nil {
			e.logger.Warn("overview failed", "company", report.Company, "error", err)
		} else {
			report.Overview = md
		}
	}
	if q.Analysis {
		if md, err := e.analyst.Compare(ctx, articles); err != nil {
			e.logger.Warn("comparative analysis failed", "company", report.Company, "error", err)
		} else {
			report.Analysis = md
		}
	}
	return report, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
