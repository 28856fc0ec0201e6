package middleware

import (
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Laisky/transport-order-mcp/common/ctxkey"
	"github.com/Laisky/transport-order-mcp/common/logger"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// RequestID assigns every request an id. An id sent by the client is kept.
// The id is echoed in the response and logged with the request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxkey.RequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// ContextLogger makes the gin request logger available to code that only
// sees the request context, such as the service layer.
func ContextLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := gmw.GetLogger(c).Named("request")
		lg.Debug("request started",
			zap.String("request_id", c.GetString(ctxkey.RequestID)),
			zap.String("path", c.Request.URL.Path))
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), lg))
		c.Next()
	}
}
