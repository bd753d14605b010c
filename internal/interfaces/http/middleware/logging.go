package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
)

const requestIDHeader = "X-Request-ID"

// slowThreshold marks requests worth a warning even when they succeed.
const slowThreshold = 3 * time.Second

// RequestLogging logs one line per request with method, route, status, and
// latency. Health and metrics probes are skipped to keep the log quiet.
func RequestLogging(logger logging.Logger) gin.HandlerFunc {
	skip := map[string]struct{}{
		"/healthz": {},
		"/readyz":  {},
		"/metrics": {},
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		started := time.Now()
		c.Next()
		elapsed := time.Since(started)

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", elapsed),
			logging.String("request_id", requestID),
			logging.String("client_ip", c.ClientIP()),
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request failed", fields...)
		case c.Writer.Status() >= 400 || elapsed > slowThreshold:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
