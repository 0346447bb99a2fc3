package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GAMA-00/gato-app-sub001/internal/service"
)

// scrape and liveness traffic would dwarf booking traffic in the histograms
var unobservedPaths = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
	"/ready":   {},
}

// Metrics returns middleware that captures request metrics using the provided service.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		if _, skip := unobservedPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, status, duration)
	}
}
