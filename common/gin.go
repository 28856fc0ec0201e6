package common

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Laisky/transport-order-mcp/common/config"
	"github.com/Laisky/transport-order-mcp/common/ctxkey"
)

// GetRequestBody reads and caches the request body so it can be reused later in the handler chain.
func GetRequestBody(c *gin.Context) (requestBody []byte, err error) {
	if cached, _ := c.Get(ctxkey.KeyRequestBody); cached != nil {
		return cached.([]byte), nil
	}
	requestBody, err = io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read request body failed")
	}
	_ = c.Request.Body.Close()
	c.Set(ctxkey.KeyRequestBody, requestBody)

	return requestBody, nil
}

// UnmarshalBodyReusable decodes the JSON body into v and runs the `binding` struct tags
// through gin's validator. The body stays readable for later handlers.
func UnmarshalBodyReusable(c *gin.Context, v any) error {
	if v == nil || reflect.TypeOf(v).Kind() != reflect.Ptr {
		return errors.Errorf("UnmarshalBodyReusable only accept pointer, got %v", reflect.TypeOf(v))
	}

	requestBody, err := GetRequestBody(c)
	if err != nil {
		return errors.Wrap(err, "get request body failed")
	}

	if err = LogClientRequestPayload(c, "", logBodyLimit()); err != nil {
		return errors.Wrap(err, "log client request payload failed")
	}

	if err = json.Unmarshal(requestBody, v); err != nil {
		return errors.Wrap(err, "unmarshal request body failed")
	}
	if binding.Validator != nil {
		if err = binding.Validator.ValidateStruct(v); err != nil {
			return errors.Wrap(err, "validate request body failed")
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
	return nil
}

// LogClientRequestPayload emits a DEBUG log for the inbound payload once per request.
func LogClientRequestPayload(c *gin.Context, label string, limit int) error {
	if logged, ok := c.Get(ctxkey.ClientRequestPayloadLogged); ok {
		if flag, ok := logged.(bool); ok && flag {
			return nil
		}
	}

	body, err := GetRequestBody(c)
	if err != nil {
		return errors.Wrap(err, "get request body failed")
	}

	preview, truncated := SanitizePayloadForLogging(body, limit)
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("url", c.Request.URL.String()),
		zap.Int("body_bytes", len(body)),
		zap.Bool("body_truncated", truncated),
		zap.ByteString("body_preview", preview),
	}
	if label != "" {
		fields = append(fields, zap.String("label", label))
	}

	gmw.GetLogger(c).Debug("client request received", fields...)
	c.Set(ctxkey.ClientRequestPayloadLogged, true)
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	return nil
}

func logBodyLimit() int {
	if config.LogBodyLimit > 0 {
		return config.LogBodyLimit
	}
	return DefaultLogBodyLimit
}
