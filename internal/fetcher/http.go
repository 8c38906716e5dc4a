package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/types"
)

const (
	defaultRetryAfter = 5 * time.Second
	maxRetryAfter     = 2 * time.Minute
)

// decoders maps Content-Encoding values to body readers. Compression is
// negotiated by hand so brotli works too.
var decoders = map[string]func(io.Reader) (io.Reader, error){
	"gzip":    func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) },
	"deflate": func(r io.Reader) (io.Reader, error) { return flate.NewReader(r), nil },
	"br":      func(r io.Reader) (io.Reader, error) { return brotli.NewReader(r), nil },
}

// HTTPFetcher fetches search result pages, news feeds and article pages
// over plain HTTP.
type HTTPFetcher struct {
	client      *http.Client
	timeout     time.Duration
	maxBody     int64
	userAgents  []string
	uaIndex     atomic.Int64
	searchHosts map[string]bool
	logger      *slog.Logger
}

// NewHTTPFetcher builds the shared client. The per-request timeout comes
// from engine.request_timeout.
func NewHTTPFetcher(cfg *config.Config, logger *slog.Logger) (*HTTPFetcher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	client := &http.Client{
		Transport:     newTransport(cfg, logger),
		Jar:           jar,
		CheckRedirect: redirectPolicy(cfg.Fetcher),
	}

	return &HTTPFetcher{
		client:      client,
		timeout:     cfg.Engine.RequestTimeout,
		maxBody:     cfg.Fetcher.MaxBodySize,
		userAgents:  cfg.Engine.UserAgents,
		searchHosts: map[string]bool{"www.google.com": true, "news.google.com": true},
		logger:      logger.With("component", "http_fetcher"),
	}, nil
}

func newTransport(cfg *config.Config, logger *slog.Logger) *http.Transport {
	t := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.Fetcher.MaxIdleConns,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     cfg.Fetcher.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.Fetcher.TLSInsecure},
		DisableCompression:  true,
	}
	if cfg.Proxy.Enabled && len(cfg.Proxy.URLs) > 0 {
		t.Proxy = NewProxyManager(&cfg.Proxy, logger).ProxyFunc()
	}
	return t
}

func redirectPolicy(cfg config.FetcherConfig) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		switch {
		case !cfg.FollowRedirects:
			return http.ErrUseLastResponse
		case len(via) >= cfg.MaxRedirects:
			return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
		}
		return nil
	}
}

// Fetch performs one GET. Rate limiting and 5xx statuses come back as
// retryable FetchErrors; other statuses are returned as responses so the
// caller can decide.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	timeout := f.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URLString(), nil)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}
	f.setHeaders(httpReq, req)

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: isRetryableError(err)}
	}
	defer httpResp.Body.Close()

	if err := statusError(req, httpResp); err != nil {
		return nil, err
	}

	body, err := f.readBody(httpResp)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), StatusCode: httpResp.StatusCode, Err: err, Retryable: true}
	}
	if len(body) == 0 && httpResp.StatusCode == http.StatusOK {
		return nil, &types.FetchError{URL: req.URLString(), StatusCode: httpResp.StatusCode, Err: types.ErrEmptyResponse}
	}

	resp := &types.Response{
		Request:     req,
		StatusCode:  httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
		Body:        body,
		FinalURL:    httpResp.Request.URL.String(),
		Duration:    time.Since(start),
	}
	f.logger.Debug("page fetched",
		"id", req.ID,
		"kind", req.Kind,
		"url", req.URLString(),
		"host", resp.Host(),
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", resp.Duration,
	)
	return resp, nil
}

func (f *HTTPFetcher) setHeaders(httpReq *http.Request, req *types.Request) {
	h := httpReq.Header
	h.Set("User-Agent", f.nextUserAgent())
	h.Set("Accept", req.Accept())
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	if req.Kind == types.PageSearch && f.searchHosts[req.URL.Hostname()] {
		// Skips the cookie consent interstitial served to new EU visitors.
		h.Set("Cookie", "CONSENT=YES+cb")
	}
	for key, values := range req.Headers {
		h.Del(key)
		for _, v := range values {
			h.Add(key, v)
		}
	}
}

func statusError(req *types.Request, resp *http.Response) error {
	code := resp.StatusCode
	if code != http.StatusTooManyRequests && code < 500 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	fe := &types.FetchError{
		URL:        req.URLString(),
		StatusCode: code,
		Retryable:  true,
		Err:        fmt.Errorf("HTTP %d: %s", code, strings.TrimSpace(string(snippet))),
	}
	if code == http.StatusTooManyRequests {
		fe.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	return fe
}

func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if dec, ok := decoders[strings.ToLower(resp.Header.Get("Content-Encoding"))]; ok {
		var err error
		if r, err = dec(r); err != nil {
			return nil, fmt.Errorf("decode %s body: %w", resp.Header.Get("Content-Encoding"), err)
		}
	}
	if f.maxBody > 0 {
		r = io.LimitReader(r, f.maxBody)
	}
	return io.ReadAll(r)
}

// Close drops idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func (f *HTTPFetcher) Type() string { return "http" }

func (f *HTTPFetcher) nextUserAgent() string {
	if len(f.userAgents) == 0 {
		return "Mozilla/5.0"
	}
	return f.userAgents[f.uaIndex.Add(1)%int64(len(f.userAgents))]
}

// isRetryableError reports whether a transport failure is worth another
// attempt. A cancelled or expired context never is.
func isRetryableError(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return true
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// parseRetryAfter reads a Retry-After value in seconds or HTTP-date form,
// capped at two minutes.
func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return defaultRetryAfter
	}
	var d time.Duration
	if secs, err := strconv.Atoi(header); err == nil {
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(header); err == nil {
		d = time.Until(t)
	} else {
		return defaultRetryAfter
	}
	return min(max(d, 0), maxRetryAfter)
}

// RandomDelay jitters base by up to 25% either way.
func RandomDelay(base time.Duration) time.Duration {
	jitter := float64(base) / 4
	return base + time.Duration((rand.Float64()*2-1)*jitter)
}
