package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Laisky/transport-order-mcp/common/metrics"
)

// Metrics records request duration and in-flight requests per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		metrics.GlobalRecorder.RecordHTTPActiveRequest(path, method, 1)
		defer metrics.GlobalRecorder.RecordHTTPActiveRequest(path, method, -1)

		c.Next()

		metrics.GlobalRecorder.RecordHTTPRequest(start, path, method, strconv.Itoa(c.Writer.Status()))
	}
}
