// Package pipeline runs each extracted article through cleanup, filtering
// and sentiment labelling before it joins the report.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/IshaanNene/NewsLens/internal/types"
)

// Middleware is one article stage. Returning a nil article drops it from
// the batch without an error.
type Middleware interface {
	Name() string
	Process(ctx context.Context, art *types.Article) (*types.Article, error)
}

// Func adapts a plain function into a named Middleware.
type Func struct {
	Stage string
	Fn    func(ctx context.Context, art *types.Article) (*types.Article, error)
}

func (f Func) Name() string { return f.Stage }

func (f Func) Process(ctx context.Context, art *types.Article) (*types.Article, error) {
	return f.Fn(ctx, art)
}

// Pipeline is an ordered chain of stages. It holds per-request state
// through its stages and is built fresh for each analysis.
type Pipeline struct {
	stages []Middleware
	logger *slog.Logger
}

func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{logger: logger.With("component", "pipeline")}
}

// Use appends stages to the chain.
func (p *Pipeline) Use(stages ...Middleware) {
	p.stages = append(p.stages, stages...)
}

// Process runs art through every stage. A stage error is wrapped in a
// PipelineError naming the stage.
func (p *Pipeline) Process(ctx context.Context, art *types.Article) (*types.Article, error) {
	url := art.URL
	for _, st := range p.stages {
		next, err := st.Process(ctx, art)
		if err != nil {
			return nil, &types.PipelineError{Stage: st.Name(), URL: url, Err: err}
		}
		if next == nil {
			p.logger.Debug("article dropped", "stage", st.Name(), "url", url)
			return nil, nil
		}
		art = next
	}
	return art, nil
}

func (p *Pipeline) Len() int { return len(p.stages) }

// Trim strips surrounding whitespace from every text field.
var Trim = Func{Stage: "trim", Fn: func(_ context.Context, art *types.Article) (*types.Article, error) {
	art.Title = strings.TrimSpace(art.Title)
	art.Summary = strings.TrimSpace(art.Summary)
	art.URL = strings.TrimSpace(art.URL)
	return art, nil
}}

// RequireTitle drops articles whose page had no title.
var RequireTitle = Func{Stage: "require_title", Fn: func(_ context.Context, art *types.Article) (*types.Article, error) {
	if art.Title == "" {
		return nil, nil
	}
	return art, nil
}}

// DedupMiddleware drops an article whose URL was already accepted in this
// batch. Feed links can redirect to the same publisher page, so this runs
// after the URL is replaced by the final one.
type DedupMiddleware struct {
	seen map[string]struct{}
}

func NewDedupMiddleware() *DedupMiddleware {
	return &DedupMiddleware{seen: make(map[string]struct{})}
}

func (m *DedupMiddleware) Name() string { return "dedup" }

func (m *DedupMiddleware) Process(_ context.Context, art *types.Article) (*types.Article, error) {
	if _, ok := m.seen[art.URL]; ok {
		return nil, nil
	}
	m.seen[art.URL] = struct{}{}
	return art, nil
}
