package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"todoapi/pkg/telemetry"
)

func Metrics(metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections()
		defer metrics.DecrementActiveConnections()

		c.Next()

		path := c.FullPath()

		if path == "" {
			path = c.Request.URL.Path
		}

		metrics.RecordRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
