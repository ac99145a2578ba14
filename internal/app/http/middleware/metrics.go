package middleware

import (
	"strconv"

	"auraweb-intake/internal/infra/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			metrics.HTTPDuration.WithLabelValues(c.Request.Method, routeLabel(c)).Observe(v)
		}))
		c.Next()
		timer.ObserveDuration()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, routeLabel(c), strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// unmatched paths share one label so scanners cannot blow up cardinality
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
