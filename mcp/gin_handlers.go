package mcp

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewGinStreamableHTTPHandler creates a Gin handler function that uses the MCP SDK's
// built-in StreamableHTTPHandler for proper MCP protocol handling.
//
// The handler is stateless: every request is served by the same server and no
// session id has to be carried between calls, which suits the request/response
// nature of the transport order tools. GET requests without an MCP accept
// header fall through to Server.Handler.
//
// Example usage in router:
//
//	mcpServer := mcp.NewServer(svc)
//	handler := mcp.NewGinStreamableHTTPHandler(mcpServer)
//	engine.Any("/mcp", handler)
func NewGinStreamableHTTPHandler(server *Server) gin.HandlerFunc {
	mcpHandler := mcp.NewStreamableHTTPHandler(
		func(req *http.Request) *mcp.Server {
			return server.server
		},
		&mcp.StreamableHTTPOptions{Stateless: true},
	)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && !strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
			server.Handler(c)
			return
		}
		mcpHandler.ServeHTTP(c.Writer, c.Request)
	}
}
