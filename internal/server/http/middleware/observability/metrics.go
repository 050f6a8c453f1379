package observability

import (
	"strconv"
	"strings"
	"time"

	"go-studioadmin/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request duration and totals per route template. Websocket
// upgrades are counted but kept out of the duration histogram since they last
// as long as the admin page stays open.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		upgrade := strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
		metrics.Inflight.Inc()
		start := time.Now()
		c.Next()
		metrics.Inflight.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		if !upgrade {
			metrics.RequestDuration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
		}
		metrics.RequestTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
