package mcp

import (
	"context"
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Laisky/transport-order-mcp/common/config"
	"github.com/Laisky/transport-order-mcp/common/logger"
	"github.com/Laisky/transport-order-mcp/service"
)

// Tool names, in the order they are registered.
const (
	ToolGenerate       = "generate_transport_order_xml"
	ToolValidate       = "validate_transport_order_xml"
	ToolTypeInfo       = "get_transport_type_info"
	ToolListTypes      = "get_available_transport_types"
	ToolExample        = "get_transport_order_example"
	ToolRequirements   = "get_parameter_requirements"
	ToolInstructions   = "instructions"
	fallbackPublicHost = "http://localhost:8080"
)

// Server wraps the official MCP SDK server and exposes the transport order
// operations of a service.Service as MCP tools.
type Server struct {
	server  *mcp.Server      // The underlying MCP SDK server instance
	service *service.Service // Operations behind the tools
	options *ServerOptions   // Server configuration options
}

// NewServer creates an MCP server with DefaultServerOptions.
func NewServer(svc *service.Service) *Server {
	return NewServerWithOptions(svc, DefaultServerOptions())
}

// NewServerWithOptions creates an MCP server for svc.
//
// Invalid options are replaced by DefaultServerOptions. When instructions are
// enabled they are rendered once and announced to clients on initialize, and
// the instructions tool is registered next to the transport order tools.
//
// Example:
//
//	opts := DefaultServerOptions().
//		WithName("toxml-staging").
//		WithInstructionType(ToolUsageInstructions)
//	server := NewServerWithOptions(svc, opts)
func NewServerWithOptions(svc *service.Service, options *ServerOptions) *Server {
	if err := options.Validate(); err != nil {
		logger.Logger.Warn("invalid mcp server options, using defaults", zap.Error(err))
		options = DefaultServerOptions()
	}

	s := &Server{
		service: svc,
		options: options,
	}

	var sdkOpts *mcp.ServerOptions
	if options.EnableInstructions {
		sdkOpts = &mcp.ServerOptions{Instructions: s.instructions(options.Instructions)}
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    options.Name,
		Version: options.Version,
	}, sdkOpts)

	s.addTransportOrderTools()
	if options.EnableInstructions {
		s.addInstructionTools()
	}

	return s
}

// RunStdio serves MCP over stdin and stdout until ctx is done or the client
// disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	logger.FromContext(ctx).Named("mcp").Info("serving MCP over stdio",
		zap.String("name", s.options.Name),
		zap.String("version", s.options.Version))
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return errors.Wrap(err, "run stdio transport")
	}
	return nil
}

// getBaseURL returns the public address configured in config.ServerAddress,
// or a localhost placeholder.
func getBaseURL() string {
	if config.ServerAddress != "" {
		return config.ServerAddress
	}
	return fallbackPublicHost
}

// getEffectiveBaseURL returns the base URL to use for this server instance,
// considering both server options and global configuration.
func (s *Server) getEffectiveBaseURL() string {
	if s.options != nil && s.options.BaseURL != "" {
		return s.options.BaseURL
	}
	return getBaseURL()
}

// getAvailableToolNames returns a list of available tool names for this server.
func (s *Server) getAvailableToolNames() []string {
	tools := []string{
		ToolGenerate,
		ToolValidate,
		ToolTypeInfo,
		ToolListTypes,
		ToolExample,
		ToolRequirements,
	}

	if s.options != nil && s.options.EnableInstructions {
		tools = append(tools, ToolInstructions)
	}

	return tools
}

// Handler answers plain HTTP GET requests on the MCP route with a short
// description of the server. MCP clients use the streamable HTTP handler.
func (s *Server) Handler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":         "Transport order MCP server is available",
		"name":            s.options.Name,
		"version":         s.options.Version,
		"tools":           s.getAvailableToolNames(),
		"transport_types": s.service.TypeNames(),
		"note":            "Use an MCP client with the streamable HTTP transport to call the tools",
	})
}
