package middleware

import (
	"time"

	"github.com/Saroj9823Dangol/event-management-sub001/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger writes one "http_request" line per request, keyed by the
// route template so session ids do not fan out log cardinality. The level
// follows the response status.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		entry := logger.For(c.Request.Context(), log).With(
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
		if id := c.Param("id"); id != "" {
			entry = entry.With(zap.String("session_id", id))
		}
		if userID, err := GetUserID(c); err == nil {
			entry = entry.With(zap.String("user_id", userID))
		}
		if len(c.Errors) > 0 {
			entry = entry.With(zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= 500:
			entry.Error("http_request")
		case status >= 400:
			entry.Warn("http_request")
		default:
			entry.Info("http_request")
		}
	}
}
