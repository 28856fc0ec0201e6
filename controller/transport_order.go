package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/transport-order-mcp/common"
	"github.com/Laisky/transport-order-mcp/common/config"
	"github.com/Laisky/transport-order-mcp/middleware"
	"github.com/Laisky/transport-order-mcp/model"
	"github.com/Laisky/transport-order-mcp/service"
)

// GenerateRequest is the body of POST /api/v1/transport-orders/generate.
// OrderData is either a JSON object or a string holding one.
type GenerateRequest struct {
	TransportType string          `json:"transport_type" binding:"required"`
	OrderData     json.RawMessage `json:"order_data" binding:"required"`
}

// ValidateRequest is the JSON body of POST /api/v1/transport-orders/validate.
type ValidateRequest struct {
	XMLContent    string `json:"xml_content" binding:"required"`
	TransportType string `json:"transport_type"`
}

// TransportOrderController serves the REST mirror of the MCP tools.
type TransportOrderController struct {
	svc *service.Service
}

// NewTransportOrderController returns a controller backed by svc.
func NewTransportOrderController(svc *service.Service) *TransportOrderController {
	return &TransportOrderController{svc: svc}
}

// Generate builds a transport order document.
func (ctl *TransportOrderController) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := common.UnmarshalBodyReusable(c, &req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "parse generate request"))
		return
	}

	orderJSON, err := orderDataJSON(req.OrderData)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, err)
		return
	}

	res := ctl.svc.Generate(c.Request.Context(), req.TransportType, orderJSON)
	respond(c, &res.Envelope, res)
}

// Validate checks a document. The XML is taken from a JSON body, or from the
// raw body when the request is sent as application/xml or text/xml with the
// type in the transport_type query parameter.
func (ctl *TransportOrderController) Validate(c *gin.Context) {
	var req ValidateRequest
	switch c.ContentType() {
	case "application/xml", "text/xml":
		if err := common.LogClientRequestPayload(c, "validate_xml", config.LogBodyLimit); err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, err)
			return
		}
		body, err := common.GetRequestBody(c)
		if err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, err)
			return
		}
		req.XMLContent = string(body)
		req.TransportType = c.Query("transport_type")
	default:
		if err := common.UnmarshalBodyReusable(c, &req); err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "parse validate request"))
			return
		}
	}

	res := ctl.svc.Validate(c.Request.Context(), req.XMLContent, req.TransportType)
	respond(c, &res.Envelope, res)
}

// ListTypes lists the supported transport types.
func (ctl *TransportOrderController) ListTypes(c *gin.Context) {
	res := ctl.svc.ListTypes(c.Request.Context())
	respond(c, &res.Envelope, res)
}

// TypeInfo describes the transport type named in the path.
func (ctl *TransportOrderController) TypeInfo(c *gin.Context) {
	res := ctl.svc.TypeInfo(c.Request.Context(), c.Param("type"))
	respond(c, &res.Envelope, res)
}

// Example returns example input and XML of the transport type in the path.
func (ctl *TransportOrderController) Example(c *gin.Context) {
	res := ctl.svc.Example(c.Request.Context(), c.Param("type"))
	respond(c, &res.Envelope, res)
}

// Requirements lists the parameters and rules of the transport type in the path.
func (ctl *TransportOrderController) Requirements(c *gin.Context) {
	res := ctl.svc.ParameterRequirements(c.Request.Context(), c.Param("type"))
	respond(c, &res.Envelope, res)
}

// ReloadCatalog drops the cached templates and definitions.
func (ctl *TransportOrderController) ReloadCatalog(c *gin.Context) {
	res := ctl.svc.ReloadCatalog(c.Request.Context())
	if res.Success {
		gmw.GetLogger(c).Info("catalog reloaded", zap.Strings("templates", res.Templates))
	}
	respond(c, &res.Envelope, res)
}

// orderDataJSON accepts order data either inline or as an encoded string.
func orderDataJSON(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return string(trimmed), nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", errors.Wrap(err, "decode order_data string")
	}
	return strings.TrimSpace(s), nil
}

func respond(c *gin.Context, env *model.Envelope, body any) {
	c.JSON(StatusFor(env.ErrorType), body)
}

// StatusFor maps an error category to the HTTP status of the REST API.
func StatusFor(t model.ErrorType) int {
	switch t {
	case model.ErrorTypeNone:
		return http.StatusOK
	case model.ErrorTypeInvalidTransportType:
		return http.StatusNotFound
	case model.ErrorTypeInvalidJSON:
		return http.StatusBadRequest
	case model.ErrorTypeMissingField, model.ErrorTypeBusinessRule, model.ErrorTypeStructural:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
