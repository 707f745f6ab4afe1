package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/service"
)

// Metrics times every request and feeds the Prometheus counters. The
// route template is used as the path label so /teacher/class/:id stays
// one series instead of one per class.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	if metrics == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metrics.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
