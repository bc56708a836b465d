package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tick-backtest/internal/logging"
)

// Logger logs one line per request and stores a request-scoped logger in
// the request context for logging.FromContext.
func Logger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := log.With("method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), reqLog))

		c.Next()

		fields := []any{"status", c.Writer.Status(), "latency", time.Since(start)}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		if c.Writer.Status() >= 500 {
			reqLog.Warnw("Request", fields...)
			return
		}
		reqLog.Infow("Request", fields...)
	}
}
