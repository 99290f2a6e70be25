package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quizboard/internal/platform/logging"
)

// healthPrefix marks probe routes, which are never logged.
const healthPrefix = "/-/"

// Logging returns middleware that logs request completion.
// The request context logger is enriched with the trace ID so handlers and
// the backend client log with it. Paths in skipPaths and probe routes are
// not logged.
func Logging(logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if span := trace.SpanFromContext(ctx); span.SpanContext().HasTraceID() {
			ctx = logging.WithTraceID(logging.WithContext(ctx, logging.FromContextOr(ctx, logger)),
				span.SpanContext().TraceID().String())
			c.Request = c.Request.WithContext(ctx)
		}

		path := c.Request.URL.Path
		if _, ok := skip[path]; ok || strings.HasPrefix(path, healthPrefix) {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}

		logging.FromContextOr(c.Request.Context(), logger).LogAttrs(c.Request.Context(), level, "request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}
