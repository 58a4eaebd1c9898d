package middleware

import (
	"strconv"
	"time"

	"tariff-compare/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics counts requests per matched route template, so path parameters
// and unknown URLs do not create new series.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
