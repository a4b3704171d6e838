package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vetdesk/frontdesk-backend/internal/observability"
)

// RequestMetrics counts requests per method, route template, and status
// class after the handler chain finishes.
func RequestMetrics(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.IncHTTPRequest(c.Request.Method, route, c.Writer.Status())
	}
}
