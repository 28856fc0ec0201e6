package middleware

import (
	"context"
	stdErrors "errors"
	"fmt"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/transport-order-mcp/common/ctxkey"
	"github.com/Laisky/transport-order-mcp/model"
)

// AbortWithError aborts the request with the result envelope of a failed
// operation. Requests that never reached an operation (bad body, unknown
// route) are answered through here.
func AbortWithError(c *gin.Context, statusCode int, err error) {
	logger := gmw.GetLogger(c)
	if shouldLogAsWarning(statusCode, err) {
		logger.Warn("server abort",
			zap.Int("status_code", statusCode),
			zap.Error(err))
	} else {
		logger.Error("server abort",
			zap.Int("status_code", statusCode),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(statusCode, model.Failed(errorTypeFor(statusCode),
		MessageWithRequestID(err.Error(), c.GetString(ctxkey.RequestID))))
}

// MessageWithRequestID appends the request id to msg so that clients can
// quote it when reporting a problem.
func MessageWithRequestID(msg, id string) string {
	if id == "" {
		return msg
	}
	return fmt.Sprintf("%s (request id: %s)", msg, id)
}

func errorTypeFor(statusCode int) model.ErrorType {
	if statusCode >= 400 && statusCode < 500 {
		return model.ErrorTypeInvalidJSON
	}
	return model.ErrorTypeSystem
}

// shouldLogAsWarning determines whether an abort should be logged as WARN.
//
// Client errors and requests cancelled by the client are warnings,
// everything else is a server side failure.
func shouldLogAsWarning(statusCode int, err error) bool {
	if statusCode >= 400 && statusCode < 500 {
		return true
	}
	if err == nil {
		return false
	}
	return stdErrors.Is(err, context.Canceled)
}
