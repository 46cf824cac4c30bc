package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/evently/internal/metrics"
)

// MetricsMiddleware records request counts and latency per route template so
// event ids do not explode label cardinality.
func MetricsMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
