package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/transport-order-mcp/controller"
	"github.com/Laisky/transport-order-mcp/service"
)

// SetApiRouter mounts the REST mirror of the MCP tools under /api/v1.
func SetApiRouter(engine *gin.Engine, svc *service.Service) {
	ctl := controller.NewTransportOrderController(svc)

	apiRouter := engine.Group("/api/v1")
	apiRouter.Use(gzip.Gzip(gzip.DefaultCompression))
	{
		apiRouter.POST("/transport-orders/generate", ctl.Generate)
		apiRouter.POST("/transport-orders/validate", ctl.Validate)

		apiRouter.GET("/transport-types", ctl.ListTypes)
		apiRouter.GET("/transport-types/:type", ctl.TypeInfo)
		apiRouter.GET("/transport-types/:type/example", ctl.Example)
		apiRouter.GET("/transport-types/:type/requirements", ctl.Requirements)

		apiRouter.POST("/catalog/reload", ctl.ReloadCatalog)
	}
}
