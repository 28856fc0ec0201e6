package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Laisky/transport-order-mcp/common/config"
	"github.com/Laisky/transport-order-mcp/mcp"
)

// SetMCPRouter mounts the streamable HTTP endpoint at config.MCPPath.
func SetMCPRouter(engine *gin.Engine, server *mcp.Server) {
	handler := mcp.NewGinStreamableHTTPHandler(server)
	for _, method := range []string{"GET", "POST", "DELETE"} {
		engine.Handle(method, config.MCPPath, handler)
	}
}
