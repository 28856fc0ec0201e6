package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Laisky/transport-order-mcp/common"
	"github.com/Laisky/transport-order-mcp/common/config"
)

// SetOpsRouter mounts the health check and, when enabled, the Prometheus
// scrape endpoint.
func SetOpsRouter(engine *gin.Engine) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": common.Version,
		})
	})

	if config.EnablePrometheusMetrics {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}
