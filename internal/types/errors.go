package types

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Acquisition.
	ErrInvalidURL    = errors.New("invalid URL")
	ErrEmptyResponse = errors.New("empty response body")
	ErrNotStatic     = errors.New("page needs javascript or has too little text")

	// Requests.
	ErrInvalidCompany = errors.New("company name is required")
	ErrNoArticles     = errors.New("no articles found")
	ErrEmptyText      = errors.New("empty text")

	// Remote models.
	ErrNoCredentials = errors.New("provider credentials not configured")
)

// FetchError is a failed page fetch. Retryable marks transient failures;
// RetryAfter carries the server's hint on HTTP 429.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
	RetryAfter time.Duration
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error     { return e.Err }
func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ParseError is a page or feed that could not be read. Selector names the
// query or format that failed.
type ParseError struct {
	URL      string
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("parse %s (%s): %v", e.URL, e.Selector, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SummarizeError is a failed reduction step: external, chunk or reduce.
type SummarizeError struct {
	Stage string
	Err   error
}

func (e *SummarizeError) Error() string {
	return fmt.Sprintf("summarize (%s): %v", e.Stage, e.Err)
}

func (e *SummarizeError) Unwrap() error { return e.Err }

// StorageError is a failed report export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("export to %s: %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PipelineError is an article stage failure.
type PipelineError struct {
	Stage string
	URL   string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("article %s: stage %s: %v", e.URL, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
