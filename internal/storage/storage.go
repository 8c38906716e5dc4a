// Package storage exports analysis reports to files or MongoDB.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// Storage is the interface for all report export backends.
type Storage interface {
	// Store persists a batch of reports.
	Store(ctx context.Context, reports []*types.Report) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the backend selected by cfg.Type. A comma-separated type such
// as "json,csv" exports to each listed backend. File backends write under
// cfg.OutputPath.
func New(cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	kinds := config.StorageTypes(cfg.Type)
	if len(kinds) == 1 {
		return newBackend(kinds[0], cfg, logger)
	}

	backends := make([]Storage, 0, len(kinds))
	for _, kind := range kinds {
		b, err := newBackend(kind, cfg, logger)
		if err != nil {
			for _, opened := range backends {
				_ = opened.Close()
			}
			return nil, err
		}
		backends = append(backends, b)
	}
	return NewMultiStorage(backends, logger), nil
}

func newBackend(kind string, cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	switch kind {
	case "json":
		return NewJSONStorage(filepath.Join(cfg.OutputPath, "reports.json"), logger)
	case "jsonl":
		return NewJSONLStorage(filepath.Join(cfg.OutputPath, "reports.jsonl"), logger)
	case "csv":
		return NewCSVStorage(filepath.Join(cfg.OutputPath, "articles.csv"), logger)
	case "mongodb":
		return NewMongoStorage(cfg.MongoURI, cfg.Database, cfg.Collection, logger)
	default:
		return nil, &types.StorageError{Backend: kind, Err: fmt.Errorf("unsupported storage type")}
	}
}

// Export stores one report and closes the backend.
func Export(ctx context.Context, s Storage, report *types.Report) error {
	storeErr := s.Store(ctx, []*types.Report{report})
	closeErr := s.Close()
	if err := firstNonNil(storeErr, closeErr); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	return nil
}

// Describe names where an export went, for CLI output.
func Describe(cfg config.StorageConfig) string {
	var parts []string
	for _, kind := range config.StorageTypes(cfg.Type) {
		switch kind {
		case "mongodb":
			parts = append(parts, fmt.Sprintf("mongodb %s.%s", cfg.Database, cfg.Collection))
		case "csv":
			parts = append(parts, filepath.Join(cfg.OutputPath, "articles.csv"))
		default:
			parts = append(parts, filepath.Join(cfg.OutputPath, "reports."+kind))
		}
	}
	return strings.Join(parts, ", ")
}

func firstNonNil(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
