package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// AudioFile describes a stored audio file.
type AudioFile struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Hash        string    `json:"hash,omitempty"`
	ModTime     time.Time `json:"mod_time"`
}

// AudioStore keeps generated audio in one directory under random names.
type AudioStore struct {
	dir     string
	written atomic.Int64
	removed atomic.Int64
	logger  *slog.Logger
}

// NewAudioStore creates the directory if needed.
func NewAudioStore(dir string, logger *slog.Logger) (*AudioStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &AudioStore{
		dir:    dir,
		logger: logger.With("component", "audio_store"),
	}, nil
}

// Dir returns the storage directory.
func (s *AudioStore) Dir() string { return s.dir }

// Save writes r to a new file with a UUID name and the given extension.
func (s *AudioStore) Save(r io.Reader, ext string) (*AudioFile, error) {
	name := uuid.NewString() + ext
	localPath := filepath.Join(s.dir, name)

	f, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, hasher), r)
	if err != nil {
		_ = os.Remove(localPath)
		return nil, fmt.Errorf("write file: %w", err)
	}
	s.written.Add(1)

	out := &AudioFile{
		Name:        name,
		Path:        localPath,
		Size:        size,
		ContentType: contentTypeOf(name),
		Hash:        hex.EncodeToString(hasher.Sum(nil)),
		ModTime:     time.Now(),
	}
	s.logger.Debug("audio saved", "name", name, "size", humanSize(size), "hash", out.Hash[:16])
	return out, nil
}

// Open resolves a bare file name inside the store. Names with path
// separators are rejected.
func (s *AudioStore) Open(name string) (*AudioFile, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, os.ErrNotExist
	}
	localPath := filepath.Join(s.dir, name)
	stat, err := os.Stat(localPath)
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, os.ErrNotExist
	}
	return &AudioFile{
		Name:        name,
		Path:        localPath,
		Size:        stat.Size(),
		ContentType: contentTypeOf(name),
		ModTime:     stat.ModTime(),
	}, nil
}

// Cleanup deletes regular files older than maxAge and returns how many were
// removed. Errors on single files are logged and skipped.
func (s *AudioStore) Cleanup(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Warn("failed to remove audio file", "name", entry.Name(), "error", err)
			continue
		}
		removed++
	}
	s.removed.Add(int64(removed))
	return removed, nil
}

// Stats returns store statistics.
func (s *AudioStore) Stats() map[string]int64 {
	return map[string]int64{
		"written": s.written.Load(),
		"removed": s.removed.Load(),
	}
}

func contentTypeOf(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".mp3":
		return "audio/mpeg"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}

func humanSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
