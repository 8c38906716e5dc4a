package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/IshaanNene/NewsLens/internal/text"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// Method records which path produced a summary.
type Method string

const (
	MethodExternal Method = "external"
	MethodLocal    Method = "local"
	MethodFailed   Method = "failed"
)

// Outcome is the result of reducing one article.
type Outcome struct {
	Title   string
	Summary string
	Method  Method

	// ExternalErr is set when the external path was tried and failed
	// before the local path ran.
	ExternalErr error

	// Err is set when no summary could be produced. Summary then holds
	// types.SummaryErrorText.
	Err error
}

// OK reports whether a summary was produced.
func (o Outcome) OK() bool { return o.Err == nil }

// Reducer turns an article's title and raw text into one summary: the
// external summarizer first when asked for, otherwise a summary of the
// per-chunk local summaries.
type Reducer struct {
	local     LocalSummarizer
	external  ExternalSummarizer
	chunkSize int
	logger    *slog.Logger
}

// NewReducer creates a Reducer. external may be nil.
func NewReducer(local LocalSummarizer, external ExternalSummarizer, chunkSize int, logger *slog.Logger) *Reducer {
	if chunkSize <= 0 {
		chunkSize = text.DefaultChunkSize
	}
	return &Reducer{
		local:     local,
		external:  external,
		chunkSize: chunkSize,
		logger:    logger.With("component", "reducer"),
	}
}

// HasExternal reports whether an external summarizer is configured.
func (r *Reducer) HasExternal() bool { return r.external != nil }

// Reduce summarizes one article. It never panics or returns a bare error;
// failures are reported through Outcome.Err with the placeholder summary.
func (r *Reducer) Reduce(ctx context.Context, title, body string, useExternal bool) Outcome {
	title = strings.TrimSpace(title)

	var externalErr error
	if useExternal && r.external != nil {
		summary, err := r.external.SummarizeArticle(ctx, title, body)
		if err == nil {
			return Outcome{Title: title, Summary: summary, Method: MethodExternal}
		}
		externalErr = err
		r.logger.Warn("external summary failed, using local summarizer", "title", title, "error", err)
	}

	summary, err := r.reduceLocal(ctx, title, body)
	if err != nil {
		r.logger.Warn("summarization failed", "title", title, "error", err)
		return Outcome{
			Title:       text.Normalize(title),
			Summary:     types.SummaryErrorText,
			Method:      MethodFailed,
			ExternalErr: externalErr,
			Err:         err,
		}
	}
	return Outcome{Title: title, Summary: summary, Method: MethodLocal, ExternalErr: externalErr}
}

func (r *Reducer) reduceLocal(ctx context.Context, title, body string) (string, error) {
	if r.local == nil {
		return "", &types.SummarizeError{Stage: "chunk", Err: errors.New("no local summarizer configured")}
	}
	chunks := text.Chunk(text.Normalize(body), r.chunkSize)
	if len(chunks) == 0 {
		return "", &types.SummarizeError{Stage: "chunk", Err: types.ErrEmptyText}
	}

	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return "", &types.SummarizeError{Stage: "chunk", Err: err}
		}
		s, err := r.local.Summarize(ctx, title+" - "+chunk)
		if err != nil {
			return "", &types.SummarizeError{Stage: "chunk", Err: err}
		}
		r.logger.Debug("chunk summarized", "chunk", i+1, "of", len(chunks), "chars", len(chunk))
		partials = append(partials, s)
	}

	final, err := r.local.Summarize(ctx, strings.Join(partials, " "))
	if err != nil {
		return "", &types.SummarizeError{Stage: "reduce", Err: err}
	}
	final = text.Normalize(final)
	if final == "" {
		return "", &types.SummarizeError{Stage: "reduce", Err: types.ErrEmptyResponse}
	}
	return final, nil
}
