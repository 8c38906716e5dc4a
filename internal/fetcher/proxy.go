package fetcher

import (
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/IshaanNene/NewsLens/internal/config"
)

// ProxyManager rotates outbound requests across configured proxies.
type ProxyManager struct {
	mu       sync.RWMutex
	proxies  []*proxyEntry
	rotation string
	index    atomic.Int64
	logger   *slog.Logger
}

type proxyEntry struct {
	url     *url.URL
	healthy bool
}

// NewProxyManager creates a ProxyManager from configuration. Unparseable
// proxy URLs are logged and skipped.
func NewProxyManager(cfg *config.ProxyConfig, logger *slog.Logger) *ProxyManager {
	pm := &ProxyManager{
		rotation: cfg.Rotation,
		logger:   logger.With("component", "proxy_manager"),
	}
	for _, raw := range cfg.URLs {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			pm.logger.Warn("invalid proxy URL", "url", raw, "error", err)
			continue
		}
		pm.proxies = append(pm.proxies, &proxyEntry{url: u, healthy: true})
	}
	pm.logger.Info("proxy manager initialized", "count", len(pm.proxies), "rotation", cfg.Rotation)
	return pm
}

// ProxyFunc returns an http.Transport-compatible proxy function. A nil
// URL means a direct connection.
func (pm *ProxyManager) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(*http.Request) (*url.URL, error) {
		return pm.Next(), nil
	}
}

// Next returns the next healthy proxy, or nil when none is left.
func (pm *ProxyManager) Next() *url.URL {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	healthy := make([]*url.URL, 0, len(pm.proxies))
	for _, p := range pm.proxies {
		if p.healthy {
			healthy = append(healthy, p.url)
		}
	}
	if len(healthy) == 0 {
		return nil
	}
	if pm.rotation == "random" {
		return healthy[rand.Intn(len(healthy))]
	}
	idx := pm.index.Add(1) % int64(len(healthy))
	return healthy[idx]
}

// MarkFailed takes a proxy out of rotation.
func (pm *ProxyManager) MarkFailed(proxyURL *url.URL, err error) {
	pm.setHealth(proxyURL, false)
	pm.logger.Warn("proxy marked unhealthy", "proxy", proxyURL.Host, "error", err)
}

// MarkHealthy puts a proxy back into rotation.
func (pm *ProxyManager) MarkHealthy(proxyURL *url.URL) {
	pm.setHealth(proxyURL, true)
}

func (pm *ProxyManager) setHealth(proxyURL *url.URL, healthy bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, p := range pm.proxies {
		if p.url.String() == proxyURL.String() {
			p.healthy = healthy
			return
		}
	}
}

// HealthyCount returns the number of proxies still in rotation.
func (pm *ProxyManager) HealthyCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	n := 0
	for _, p := range pm.proxies {
		if p.healthy {
			n++
		}
	}
	return n
}
