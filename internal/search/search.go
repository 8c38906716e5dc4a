// Package search discovers candidate article URLs for a company.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/fetcher"
)

// Discoverer finds article links about a company.
type Discoverer interface {
	// Discover returns up to a provider-defined multiple of count links,
	// starting skip results into the listing.
	Discover(ctx context.Context, company string, skip, count int) ([]string, error)

	// Name identifies the provider in logs.
	Name() string
}

// New builds the discoverer selected by cfg.Search.Provider.
func New(cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) (Discoverer, error) {
	switch cfg.Search.Provider {
	case "", "google":
		return NewGoogleSearch(cfg, f, logger), nil
	case "rss":
		return NewFeedSearch(cfg, f, logger), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Search.Provider)
	}
}
