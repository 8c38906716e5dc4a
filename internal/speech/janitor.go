package speech

import (
	"context"
	"log/slog"
	"time"
)

// Janitor periodically removes old audio files. It does not coordinate with
// in-flight requests: a file may be removed while a client is still
// downloading it once it is older than MaxAge.
type Janitor struct {
	store    *AudioStore
	interval time.Duration
	maxAge   time.Duration
	onClean  func(n int)
	logger   *slog.Logger
}

// NewJanitor creates a Janitor. onClean, if set, receives the count of each
// non-empty sweep.
func NewJanitor(store *AudioStore, interval, maxAge time.Duration, onClean func(n int), logger *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}
	return &Janitor{
		store:    store,
		interval: interval,
		maxAge:   maxAge,
		onClean:  onClean,
		logger:   logger.With("component", "audio_janitor"),
	}
}

// Run sweeps every interval until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	j.logger.Info("audio janitor started", "interval", j.interval, "max_age", j.maxAge, "dir", j.store.Dir())
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Debug("audio janitor stopped")
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep runs one cleanup pass.
func (j *Janitor) Sweep() int {
	n, err := j.store.Cleanup(j.maxAge)
	if err != nil {
		j.logger.Warn("audio cleanup failed", "error", err)
		return 0
	}
	if n > 0 {
		j.logger.Info("audio files removed", "count", n)
		if j.onClean != nil {
			j.onClean(n)
		}
	}
	return n
}
