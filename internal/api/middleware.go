package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IshaanNene/NewsLens/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags each request with an id and emits one log line when it
// completes.
func requestLogger(logger *slog.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		metrics.RequestsTotal.Add(1)
		if status >= 500 {
			metrics.RequestsFailed.Add(1)
		}

		attrs := []any{
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.Warn("request failed", attrs...)
		default:
			logger.Info("request", attrs...)
		}
	}
}
