package types

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// PageKind says what a fetched page is for. Fetchers pick Accept headers
// from it and the engine logs it.
type PageKind string

const (
	PageSearch  PageKind = "search"
	PageFeed    PageKind = "feed"
	PageArticle PageKind = "article"
)

// Request is a single page fetch issued by link discovery or by the
// article loop.
type Request struct {
	URL     *url.URL
	Kind    PageKind
	Headers http.Header

	// MaxRetries bounds retries for transient failures. Zero means one
	// attempt.
	MaxRetries int
	RetryCount int

	// Timeout overrides the fetcher default when positive.
	Timeout time.Duration

	// ID correlates log lines for one fetch.
	ID string
}

// NewRequest creates a GET request for an http or https URL.
func NewRequest(rawURL string, kind PageKind) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return &Request{
		URL:     u,
		Kind:    kind,
		Headers: make(http.Header),
		ID:      uuid.NewString(),
	}, nil
}

// URLString returns the request URL, or "" when unset.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// Accept returns the Accept header for the page kind.
func (r *Request) Accept() string {
	switch r.Kind {
	case PageFeed:
		return "application/rss+xml, application/atom+xml;q=0.9, application/xml;q=0.8, */*;q=0.5"
	case PageArticle:
		return "text/html,application/xhtml+xml;q=0.9,application/pdf;q=0.8,*/*;q=0.5"
	default:
		return "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
}
