package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts and latency per route. The gin route
// template (not the raw path) is used as the label so cardinality stays
// bounded.
func Metrics(m *prometheus.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(started))
	}
}
