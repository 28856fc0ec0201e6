package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/transport-order-mcp/common/ctxkey"
	"github.com/Laisky/transport-order-mcp/common/logger"
	"github.com/Laisky/transport-order-mcp/common/metrics"
	"github.com/Laisky/transport-order-mcp/model"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(gmw.NewLoggerMiddleware(
		gmw.WithLevel(glog.LevelDebug.String()),
		gmw.WithLogger(logger.Logger.Named("gin-test")),
	))
	engine.Use(RequestID())
	return engine
}

func TestAbortWithError(t *testing.T) {
	engine := newEngine()
	engine.POST("/bad", func(c *gin.Context) {
		AbortWithError(c, http.StatusBadRequest, errors.New("order_data is required"))
	})
	engine.POST("/broken", func(c *gin.Context) {
		AbortWithError(c, http.StatusInternalServerError, errors.New("catalog unavailable"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bad", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var env model.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, model.ErrorTypeInvalidJSON, env.ErrorType)
	assert.Equal(t, "order_data is required (request id: req-1)", env.ErrorMessage)
	assert.Equal(t, []string{env.ErrorMessage}, env.Errors)
	assert.Equal(t, []string{}, env.Warnings)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/broken", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, model.ErrorTypeSystem, env.ErrorType)
}

func TestRequestID(t *testing.T) {
	engine := newEngine()
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ctxkey.RequestID)) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "from-client")
	engine.ServeHTTP(w, req)
	assert.Equal(t, "from-client", w.Header().Get(RequestIDHeader))
}

func TestContextLogger(t *testing.T) {
	engine := newEngine()
	engine.Use(ContextLogger())

	var got glog.Logger
	engine.GET("/", func(c *gin.Context) {
		got = logger.FromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.NotNil(t, got)
}

type countingRecorder struct {
	metrics.NoOpRecorder
	requests []string
	active   float64
}

func (r *countingRecorder) RecordHTTPRequest(_ time.Time, path, method, status string) {
	r.requests = append(r.requests, method+" "+path+" "+status)
}

func (r *countingRecorder) RecordHTTPActiveRequest(_, _ string, delta float64) {
	r.active += delta
}

func TestMetrics(t *testing.T) {
	rec := &countingRecorder{}
	orig := metrics.GlobalRecorder
	metrics.GlobalRecorder = rec
	t.Cleanup(func() { metrics.GlobalRecorder = orig })

	engine := newEngine()
	engine.Use(Metrics())
	engine.GET("/api/v1/transport-types/:type", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/transport-types/simple_road", "/nowhere"} {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []string{
		"GET /api/v1/transport-types/:type 200",
		"GET unmatched 404",
	}, rec.requests)
	assert.Zero(t, rec.active)
}

func TestShouldLogAsWarning(t *testing.T) {
	assert.True(t, shouldLogAsWarning(http.StatusBadRequest, errors.New("bad body")))
	assert.False(t, shouldLogAsWarning(http.StatusInternalServerError, errors.New("template missing")))
	assert.False(t, shouldLogAsWarning(http.StatusInternalServerError, nil))
	assert.True(t, shouldLogAsWarning(http.StatusInternalServerError, errors.Wrap(context.Canceled, "client left")))
}
