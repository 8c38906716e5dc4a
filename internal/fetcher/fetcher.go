package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// Fetcher is the interface for all page fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the content at the given request's URL.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New builds the fetcher selected by cfg.Fetcher.Type.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Fetcher.Type {
	case "", "http":
		return NewHTTPFetcher(cfg, logger)
	case "browser":
		var opts []BrowserOption
		opts = append(opts, WithStealth(DefaultStealthProfile()))
		if cfg.Proxy.Enabled && len(cfg.Proxy.URLs) > 0 {
			opts = append(opts, WithBrowserProxy(NewProxyManager(&cfg.Proxy, logger)))
		}
		return NewBrowserFetcher(cfg, logger, opts...)
	default:
		return nil, fmt.Errorf("unknown fetcher type %q", cfg.Fetcher.Type)
	}
}

// FetchWithRetry calls f.Fetch, retrying retryable failures up to
// req.MaxRetries times. A Retry-After hint from a 429 overrides delay.
func FetchWithRetry(ctx context.Context, f Fetcher, req *types.Request, delay time.Duration, logger *slog.Logger) (*types.Response, error) {
	for {
		resp, err := f.Fetch(ctx, req)
		if err == nil {
			return resp, nil
		}

		var fetchErr *types.FetchError
		if !errors.As(err, &fetchErr) || !fetchErr.IsRetryable() || req.RetryCount >= req.MaxRetries {
			return nil, err
		}
		req.RetryCount++

		wait := RandomDelay(delay)
		if fetchErr.RetryAfter > 0 {
			wait = fetchErr.RetryAfter
		}
		logger.Warn("retrying request",
			"url", req.URLString(),
			"retry", req.RetryCount,
			"max_retries", req.MaxRetries,
			"wait", wait,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}
