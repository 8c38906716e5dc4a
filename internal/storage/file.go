package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/IshaanNene/NewsLens/internal/types"
)

// JSONStorage keeps an indented JSON array of reports. Reports already in
// the file are loaded first, so each export grows the history.
type JSONStorage struct {
	path    string
	prior   int
	reports []*types.Report
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewJSONStorage opens outputPath, reading any reports it already holds.
func NewJSONStorage(outputPath string, logger *slog.Logger) (*JSONStorage, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	s := &JSONStorage{
		path:   outputPath,
		logger: logger.With("component", "json_storage"),
	}

	data, err := os.ReadFile(outputPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", outputPath, err)
	case len(data) > 0:
		if err := json.Unmarshal(data, &s.reports); err != nil {
			return nil, fmt.Errorf("existing %s is not a report array: %w", outputPath, err)
		}
	}
	s.prior = len(s.reports)
	return s, nil
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Store(_ context.Context, reports []*types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, reports...)
	return nil
}

// Close rewrites the file through a temp file and rename.
func (s *JSONStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".reports-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	out := s.reports
	if out == nil {
		out = []*types.Report{}
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		tmp.Close()
		return fmt.Errorf("encode reports: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	s.logger.Info("reports written", "path", s.path, "added", len(s.reports)-s.prior, "total", len(s.reports))
	return nil
}

// JSONLStorage appends one report per line.
type JSONLStorage struct {
	path   string
	file   *os.File
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

func NewJSONLStorage(outputPath string, logger *slog.Logger) (*JSONLStorage, error) {
	f, err := openAppend(outputPath)
	if err != nil {
		return nil, err
	}
	return &JSONLStorage{
		path:   outputPath,
		file:   f,
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(_ context.Context, reports []*types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := json.NewEncoder(s.file)
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode report for %s: %w", r.Company, err)
		}
		s.count++
	}
	return nil
}

func (s *JSONLStorage) Close() error {
	s.logger.Info("reports appended", "path", s.path, "count", s.count)
	return s.file.Close()
}

// csvHeader is the column order of the article export.
var csvHeader = []string{"company", "generated_at", "title", "url", "sentiment", "summary"}

// CSVStorage flattens reports to one row per article, appending to an
// existing file. The header is written only when the file starts empty.
type CSVStorage struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
	rows   int
	logger *slog.Logger
}

func NewCSVStorage(outputPath string, logger *slog.Logger) (*CSVStorage, error) {
	f, err := openAppend(outputPath)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write CSV header: %w", err)
		}
	}
	return &CSVStorage{
		path:   outputPath,
		file:   f,
		writer: w,
		logger: logger.With("component", "csv_storage"),
	}, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(_ context.Context, reports []*types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range reports {
		stamp := r.GeneratedAt.UTC().Format(time.RFC3339)
		for _, a := range r.Articles {
			if err := s.writer.Write([]string{r.Company, stamp, a.Title, a.URL, string(a.Sentiment), a.Summary}); err != nil {
				return fmt.Errorf("write CSV row: %w", err)
			}
			s.rows++
		}
	}
	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVStorage) Close() error {
	s.writer.Flush()
	s.logger.Info("article rows appended", "path", s.path, "rows", s.rows)
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
