package middleware

import (
	"strconv"
	"time"

	"github.com/farellandr/eventick/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency labelled by route template, so
// /v1/admin/events/:id counts as one series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
