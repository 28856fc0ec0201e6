package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/common/logger"
	"github.com/Laisky/transport-order-mcp/model"
	"github.com/Laisky/transport-order-mcp/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := catalog.New()
	require.NoError(t, err)
	svc := service.New(c)
	ctl := NewTransportOrderController(svc)

	engine := gin.New()
	engine.Use(gmw.NewLoggerMiddleware(gmw.WithLogger(logger.Logger.Named("gin-test"))))
	engine.POST("/generate", ctl.Generate)
	engine.POST("/validate", ctl.Validate)
	engine.GET("/types", ctl.ListTypes)
	engine.GET("/types/:type", ctl.TypeInfo)
	engine.GET("/types/:type/example", ctl.Example)
	engine.GET("/types/:type/requirements", ctl.Requirements)
	engine.POST("/reload", ctl.ReloadCatalog)
	return engine, svc
}

func do(engine *gin.Engine, method, path, contentType, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestGenerateEndpoint(t *testing.T) {
	engine, svc := newTestRouter(t)
	example := svc.Example(t.Context(), "simple_road")
	require.True(t, example.Success)
	input, err := json.Marshal(example.ExampleInput)
	require.NoError(t, err)
	quoted, err := json.Marshal(string(input))
	require.NoError(t, err)

	t.Run("inline object", func(t *testing.T) {
		w, out := do(engine, http.MethodPost, "/generate", "application/json",
			`{"transport_type": "simple_road", "order_data": `+string(input)+`}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, true, out["success"])
		assert.Contains(t, out["xml_content"], "<transport_orders")
	})

	t.Run("encoded string", func(t *testing.T) {
		w, out := do(engine, http.MethodPost, "/generate", "application/json",
			`{"transport_type": "simple_road", "order_data": `+string(quoted)+`}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, true, out["success"])
	})

	testCases := []struct {
		name   string
		body   string
		status int
		errTyp model.ErrorType
	}{
		{"missing order data", `{"transport_type": "simple_road"}`, http.StatusBadRequest, model.ErrorTypeInvalidJSON},
		{"not json", `transport_type=simple_road`, http.StatusBadRequest, model.ErrorTypeInvalidJSON},
		{"unknown type", `{"transport_type": "rail", "order_data": {}}`, http.StatusNotFound, model.ErrorTypeInvalidTransportType},
		{"order data array", `{"transport_type": "simple_road", "order_data": [1]}`, http.StatusBadRequest, model.ErrorTypeInvalidJSON},
		{"missing fields", `{"transport_type": "simple_road", "order_data": {}}`, http.StatusUnprocessableEntity, model.ErrorTypeMissingField},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, out := do(engine, http.MethodPost, "/generate", "application/json", tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, false, out["success"])
			assert.Equal(t, string(tc.errTyp), out["error_type"])
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	engine, svc := newTestRouter(t)
	xml := svc.Example(t.Context(), "complex_road").ExampleXML
	require.NotEmpty(t, xml)

	body, err := json.Marshal(ValidateRequest{XMLContent: xml, TransportType: "complex_road"})
	require.NoError(t, err)
	w, out := do(engine, http.MethodPost, "/validate", "application/json", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, out["is_valid"])

	w, out = do(engine, http.MethodPost, "/validate", "application/xml", xml)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "complex_road", out["transport_type"])
	assert.Equal(t, true, out["type_detected"])

	w, out = do(engine, http.MethodPost, "/validate?transport_type=ocean_visibility", "text/xml", xml)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, string(model.ErrorTypeBusinessRule), out["error_type"])

	w, _ = do(engine, http.MethodPost, "/validate", "application/json", `{"transport_type": "simple_road"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	engine, _ := newTestRouter(t)

	w, out := do(engine, http.MethodGet, "/types", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, out["total_count"])

	w, out = do(engine, http.MethodGet, "/types/ocean_visibility", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ocean_visibility", out["transport_type"])

	w, out = do(engine, http.MethodGet, "/types/simple_road/example", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, out["example_xml"])

	w, out = do(engine, http.MethodGet, "/types/complex_road/requirements", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, out["item_parameters"])

	w, out = do(engine, http.MethodGet, "/types/barge", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, out["available_types"])

	w, out = do(engine, http.MethodPost, "/reload", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["templates"], 3)
}

func TestStatusFor(t *testing.T) {
	cases := map[model.ErrorType]int{
		model.ErrorTypeNone:                 http.StatusOK,
		model.ErrorTypeInvalidTransportType: http.StatusNotFound,
		model.ErrorTypeInvalidJSON:          http.StatusBadRequest,
		model.ErrorTypeMissingField:         http.StatusUnprocessableEntity,
		model.ErrorTypeBusinessRule:         http.StatusUnprocessableEntity,
		model.ErrorTypeStructural:           http.StatusUnprocessableEntity,
		model.ErrorTypeGeneration:           http.StatusInternalServerError,
		model.ErrorTypeSystem:               http.StatusInternalServerError,
	}
	for typ, status := range cases {
		assert.Equal(t, status, StatusFor(typ), typ)
	}
}

func TestOrderDataJSON(t *testing.T) {
	got, err := orderDataJSON(json.RawMessage(` {"a": 1} `))
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, got)

	got, err = orderDataJSON(json.RawMessage(`" {\"a\": 1} "`))
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, got)
}
