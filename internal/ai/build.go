package ai

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/IshaanNene/NewsLens/internal/config"
)

// Components are the model-backed services built from configuration.
type Components struct {
	Reducer *Reducer
	Scorer  Scorer
	Analyst *Analyst

	closers []io.Closer
}

// Close releases generators that hold SDK clients.
func (c *Components) Close() error {
	var errs []error
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}

// Build wires generators, summarizers, the scorer and the analyst.
// A local summarizer always exists: without a local model the extractive
// summarizer is used.
func Build(cfg *config.Config, logger *slog.Logger) (*Components, error) {
	localGen, err := NewGenerator(cfg.LLM.Local, cfg.LLM.Timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("llm.local: %w", err)
	}
	externalGen, err := NewGenerator(cfg.LLM.External, cfg.LLM.Timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("llm.external: %w", err)
	}

	bounds := SummaryBounds{
		MinWords:  cfg.Summarizer.MinWords,
		MinLength: cfg.Summarizer.MinLength,
		MaxLength: cfg.Summarizer.MaxLength,
	}

	var local LocalSummarizer
	if cfg.Summarizer.Local == "model" && localGen != nil {
		local = NewModelSummarizer(localGen, bounds)
	} else {
		local = NewExtractiveSummarizer(bounds, cfg.Summarizer.MaxSentences)
	}

	var external ExternalSummarizer
	if externalGen != nil {
		external = NewPromptSummarizer(externalGen, cfg.Summarizer.MaxInputChars)
	}

	analystGen := externalGen
	if analystGen == nil {
		analystGen = localGen
	}

	var scorer Scorer = LexiconScorer{}
	if cfg.Sentiment.Scorer == "llm" && analystGen != nil {
		scorer = NewLLMScorer(analystGen, logger)
	}

	logger.Debug("ai components ready",
		"local", fmt.Sprintf("%T", local),
		"external", external != nil,
		"scorer", fmt.Sprintf("%T", scorer),
	)

	comps := &Components{
		Reducer: NewReducer(local, external, cfg.Summarizer.ChunkSize, logger),
		Scorer:  scorer,
		Analyst: NewAnalyst(analystGen, cfg.Summarizer.MaxInputChars),
	}
	for _, g := range []Generator{localGen, externalGen} {
		if cl, ok := g.(io.Closer); ok {
			comps.closers = append(comps.closers, cl)
		}
	}
	return comps, nil
}
