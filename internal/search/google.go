package search

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/fetcher"
	"github.com/IshaanNene/NewsLens/internal/parser"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// GoogleSearch pages through the news tab of Google web search.
type GoogleSearch struct {
	fetcher    fetcher.Fetcher
	baseURL    string
	exclude    []string
	maxPages   int
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewGoogleSearch creates a GoogleSearch discoverer.
func NewGoogleSearch(cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) *GoogleSearch {
	return &GoogleSearch{
		fetcher:    f,
		baseURL:    cfg.Search.BaseURL,
		exclude:    cfg.Search.ExcludeDomain,
		maxPages:   cfg.Search.MaxPages,
		maxRetries: cfg.Engine.MaxRetries,
		retryDelay: cfg.Engine.RetryDelay,
		logger:     logger.With("component", "google_search"),
	}
}

// Name implements Discoverer.
func (g *GoogleSearch) Name() string { return "google" }

// PageURL builds the news search URL for one result offset.
func (g *GoogleSearch) PageURL(company string, start int) string {
	q := url.QueryEscape(`company:"` + company + `" news`)
	return g.baseURL + "?q=" + q + "&tbm=nws&start=" + strconv.Itoa(start)
}

// Discover walks result pages from offset skip until count links are
// collected, a page yields no new link, or a page fails to load. The
// offset advances by the number of result anchors on the page plus one.
// When count is below 10 up to twice count links are returned, leaving
// room for pages the static filter rejects.
func (g *GoogleSearch) Discover(ctx context.Context, company string, skip, count int) ([]string, error) {
	if company == "" {
		return nil, types.ErrInvalidCompany
	}
	if skip < 0 {
		skip = 0
	}

	var (
		links []string
		seen  = make(map[string]bool)
		start = skip
	)

	for page := 0; len(links) < count && (g.maxPages <= 0 || page < g.maxPages); page++ {
		req, err := types.NewRequest(g.PageURL(company, start), types.PageSearch)
		if err != nil {
			return nil, err
		}
		req.MaxRetries = g.maxRetries

		resp, err := fetcher.FetchWithRetry(ctx, g.fetcher, req, g.retryDelay, g.logger)
		if err != nil {
			g.logger.Warn("search page failed", "company", company, "start", start, "error", err)
			if len(links) == 0 {
				return nil, err
			}
			break
		}
		if !resp.IsSuccess() {
			g.logger.Warn("search page returned error status", "company", company, "status", resp.StatusCode)
			if len(links) == 0 {
				return nil, &types.FetchError{URL: req.URLString(), StatusCode: resp.StatusCode, Err: types.ErrEmptyResponse}
			}
			break
		}

		res, err := parser.ExtractResultLinks(resp, g.exclude, seen)
		if err != nil {
			return links, err
		}
		links = append(links, res.Links...)

		g.logger.Debug("search page parsed",
			"start", start,
			"anchors", res.Anchors,
			"new_links", len(res.Links),
		)

		if len(res.Links) == 0 {
			break
		}
		start += res.Anchors + 1
	}

	limit := count
	if limit < 10 {
		limit *= 2
	}
	if len(links) > limit {
		links = links[:limit]
	}
	return links, nil
}
