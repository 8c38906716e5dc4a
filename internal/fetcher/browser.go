package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// BrowserFetcher implements Fetcher using a headless Chromium via Rod.
// Search engines often serve a degraded page to plain HTTP clients; this
// fetcher renders the result page the way a desktop browser would.
type BrowserFetcher struct {
	browser  *rod.Browser
	cfg      *config.Config
	profile  *StealthProfile
	proxyMgr *ProxyManager
	proxyURL *url.URL
	logger   *slog.Logger
}

// BrowserOption configures the BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithStealth enables go-rod/stealth pages with the given profile.
func WithStealth(p *StealthProfile) BrowserOption {
	return func(bf *BrowserFetcher) { bf.profile = p }
}

// WithBrowserProxy routes the browser through the proxy manager.
func WithBrowserProxy(pm *ProxyManager) BrowserOption {
	return func(bf *BrowserFetcher) { bf.proxyMgr = pm }
}

// NewBrowserFetcher launches Chromium and connects to it.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger, opts ...BrowserOption) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:    cfg,
		logger: logger.With("component", "browser_fetcher"),
	}
	for _, opt := range opts {
		opt(bf)
	}

	l := launcher.New().
		Headless(cfg.Fetcher.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")
	if bf.proxyMgr != nil {
		if bf.proxyURL = bf.proxyMgr.Next(); bf.proxyURL != nil {
			l = l.Proxy(bf.proxyURL.String())
		}
	}
	if bf.profile != nil {
		l = l.Set("window-size", bf.profile.WindowSize())
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	bf.browser = browser

	bf.logger.Info("browser fetcher ready", "stealth", bf.profile != nil, "proxy", bf.proxyURL != nil)
	return bf, nil
}

// searchReadySelector matches the result container of a Google search page.
const searchReadySelector = "#search, #main, #rso"

// Fetch renders the request URL. Search pages are read once the result
// container appears; other pages once the DOM stops changing.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	start := time.Now()
	fail := func(err error) (*types.Response, error) {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Retryable: true}
	}

	page, err := bf.newPage()
	if err != nil {
		return fail(err)
	}
	defer func() { _ = page.Close() }()

	if ua := req.Headers.Get("User-Agent"); ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			bf.logger.Warn("user agent override failed", "error", err)
		}
	}

	timeout := bf.cfg.Engine.RequestTimeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	p := page.Context(ctx).Timeout(timeout)

	if err := p.Navigate(req.URLString()); err != nil {
		if bf.proxyURL != nil {
			bf.proxyMgr.MarkFailed(bf.proxyURL, err)
		}
		return fail(err)
	}
	bf.waitReady(p, req)

	html, err := p.HTML()
	if err != nil {
		return fail(err)
	}

	finalURL := req.URLString()
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	resp := &types.Response{
		Request:     req,
		StatusCode:  200, // rod does not expose the navigation status
		ContentType: "text/html",
		Body:        []byte(html),
		FinalURL:    finalURL,
		Duration:    time.Since(start),
	}
	bf.logger.Debug("page rendered",
		"id", req.ID,
		"kind", req.Kind,
		"url", finalURL,
		"bytes", len(html),
		"duration", resp.Duration,
	)
	return resp, nil
}

func (bf *BrowserFetcher) waitReady(p *rod.Page, req *types.Request) {
	if req.Kind == types.PageSearch {
		if _, err := p.Element(searchReadySelector); err != nil {
			bf.logger.Warn("search results did not appear", "url", req.URLString(), "error", err)
		}
		return
	}
	if err := p.WaitStable(300 * time.Millisecond); err != nil {
		bf.logger.Warn("page never settled, reading it anyway", "url", req.URLString(), "error", err)
	}
}

func (bf *BrowserFetcher) newPage() (*rod.Page, error) {
	if bf.profile == nil {
		return bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	page, err := stealth.Page(bf.browser)
	if err != nil {
		return nil, fmt.Errorf("stealth page: %w", err)
	}
	if _, err := page.EvalOnNewDocument(bf.profile.NavigatorJS()); err != nil {
		bf.logger.Warn("navigator override failed", "error", err)
	}
	return page, nil
}

// Close shuts down the browser.
func (bf *BrowserFetcher) Close() error {
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
