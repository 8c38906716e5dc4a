package search

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/fetcher"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// FeedSearch reads a news search RSS feed such as Google News.
// Feed item links are taken as published; the domain exclusion list
// does not apply because aggregator feeds link through their own host.
type FeedSearch struct {
	fetcher    fetcher.Fetcher
	feedURL    string
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewFeedSearch creates a FeedSearch discoverer.
func NewFeedSearch(cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) *FeedSearch {
	return &FeedSearch{
		fetcher:    f,
		feedURL:    cfg.Search.RSSURL,
		maxRetries: cfg.Engine.MaxRetries,
		retryDelay: cfg.Engine.RetryDelay,
		logger:     logger.With("component", "feed_search"),
	}
}

// Name implements Discoverer.
func (s *FeedSearch) Name() string { return "rss" }

// FeedURL builds the feed query URL for a company.
func (s *FeedSearch) FeedURL(company string) string {
	v := url.Values{}
	v.Set("q", `"`+company+`"`)
	v.Set("hl", "en-US")
	v.Set("gl", "US")
	v.Set("ceid", "US:en")
	return s.feedURL + "?" + v.Encode()
}

// Discover returns up to count unique item links after skipping skip items.
func (s *FeedSearch) Discover(ctx context.Context, company string, skip, count int) ([]string, error) {
	if company == "" {
		return nil, types.ErrInvalidCompany
	}

	req, err := types.NewRequest(s.FeedURL(company), types.PageFeed)
	if err != nil {
		return nil, err
	}
	req.MaxRetries = s.maxRetries

	resp, err := fetcher.FetchWithRetry(ctx, s.fetcher, req, s.retryDelay, s.logger)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &types.FetchError{URL: req.URLString(), StatusCode: resp.StatusCode, Err: types.ErrEmptyResponse}
	}

	// gofeed.Parser fills its translators lazily, so each call gets its own.
	feed, err := gofeed.NewParser().ParseString(string(resp.Body))
	if err != nil {
		return nil, &types.ParseError{URL: req.URLString(), Selector: "rss", Err: err}
	}

	var (
		links []string
		seen  = make(map[string]bool)
	)
	for i, item := range feed.Items {
		if i < skip || item.Link == "" || seen[item.Link] {
			continue
		}
		seen[item.Link] = true
		links = append(links, item.Link)
		if len(links) >= count {
			break
		}
	}

	s.logger.Debug("feed parsed", "company", company, "items", len(feed.Items), "links", len(links))
	return links, nil
}
