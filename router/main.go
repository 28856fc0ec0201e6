// Package router mounts the MCP endpoint, the REST API and the operational
// endpoints on a gin engine.
package router

import (
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Laisky/transport-order-mcp/common/config"
	"github.com/Laisky/transport-order-mcp/common/logger"
	"github.com/Laisky/transport-order-mcp/mcp"
	"github.com/Laisky/transport-order-mcp/middleware"
	"github.com/Laisky/transport-order-mcp/service"
)

// SetRouter installs the global middleware and every route.
func SetRouter(engine *gin.Engine, svc *service.Service, mcpServer *mcp.Server) {
	engine.Use(gin.Recovery())
	if config.OpenTelemetryEnabled {
		engine.Use(otelgin.Middleware(config.OpenTelemetryServiceName))
	}
	engine.Use(gmw.NewLoggerMiddleware(
		gmw.WithLevel(config.LogLevel),
		gmw.WithLogger(logger.Logger.Named("gin")),
	))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.ContextLogger())
	engine.Use(middleware.Metrics())
	engine.Use(cors.New(corsConfig()))

	SetMCPRouter(engine, mcpServer)
	SetApiRouter(engine, svc)
	SetOpsRouter(engine)
}

// corsConfig lets browser based MCP clients such as the inspector connect.
func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"Mcp-Session-Id", "Mcp-Protocol-Version", "Last-Event-ID",
			middleware.RequestIDHeader,
		},
		ExposeHeaders: []string{"Mcp-Session-Id", middleware.RequestIDHeader},
	}
}
