package types

import (
	"bytes"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Response is a fetched search, feed or article page.
type Response struct {
	Request     *Request
	StatusCode  int
	ContentType string
	Body        []byte

	// FinalURL is where redirects ended. Feed links land on the publisher
	// here.
	FinalURL string

	Duration time.Duration

	doc *goquery.Document
}

// Document parses the body once and caches the result.
func (r *Response) Document() (*goquery.Document, error) {
	if r.doc != nil {
		return r.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		return nil, err
	}
	r.doc = doc
	return doc, nil
}

// MediaType returns the lower-cased MIME type without parameters.
func (r *Response) MediaType() string {
	if r.ContentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		mt, _, _ = strings.Cut(r.ContentType, ";")
		return strings.ToLower(strings.TrimSpace(mt))
	}
	return mt
}

// IsPDF reports whether the body is a PDF document, by type or magic bytes.
func (r *Response) IsPDF() bool {
	return r.MediaType() == "application/pdf" || bytes.HasPrefix(r.Body, []byte("%PDF-"))
}

// IsSuccess returns true if the response status is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Host returns the host of the final URL, falling back to the request.
func (r *Response) Host() string {
	if u, err := url.Parse(r.FinalURL); err == nil && u.Host != "" {
		return u.Hostname()
	}
	if r.Request != nil && r.Request.URL != nil {
		return r.Request.URL.Hostname()
	}
	return ""
}
