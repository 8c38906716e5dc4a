package engine

import (
	"strconv"
	"strings"

	"github.com/IshaanNene/NewsLens/internal/config"
)

// Query describes one company analysis.
type Query struct {
	Company string

	// Limit is the number of articles wanted. It is clamped with ClampLimit.
	Limit int

	// Skip is the search result offset to start from.
	Skip int

	// UseExternal tries the external model before local summarization.
	UseExternal bool

	// Overview and Analysis ask Analyze for the cross-article reports.
	Overview bool
	Analysis bool
}

// ClampLimit bounds a requested article count: values below one become the
// default, values above the maximum become the maximum. The external path
// has its own, smaller maximum.
func ClampLimit(cfg *config.EngineConfig, limit int, external bool) int {
	ceiling := cfg.MaxLimit
	if external && cfg.ExternalMaxLimit > 0 && cfg.ExternalMaxLimit < ceiling {
		ceiling = cfg.ExternalMaxLimit
	}
	if limit < 1 {
		limit = cfg.DefaultLimit
	}
	if limit > ceiling {
		limit = ceiling
	}
	return limit
}

// ParseLimit reads a limit from user input. Unparseable input yields the
// default.
func ParseLimit(cfg *config.EngineConfig, raw string, external bool) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = cfg.DefaultLimit
	}
	return ClampLimit(cfg, n, external)
}

// ParseSkip reads a result offset from user input. Unparseable or negative
// input yields zero.
func ParseSkip(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseBool reports whether raw is a truthy flag value.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
