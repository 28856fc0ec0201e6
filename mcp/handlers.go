package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Laisky/zap"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Laisky/transport-order-mcp/common/logger"
	"github.com/Laisky/transport-order-mcp/common/metrics"
)

// GenerateArgs are the arguments of generate_transport_order_xml.
type GenerateArgs struct {
	TransportType string `json:"transport_type" jsonschema:"Transport type: simple_road, complex_road or ocean_visibility"`
	OrderData     string `json:"order_data" jsonschema:"Order data as a JSON object encoded in a string"`
}

// ValidateArgs are the arguments of validate_transport_order_xml.
type ValidateArgs struct {
	XMLContent    string `json:"xml_content" jsonschema:"The transport order XML document to validate"`
	TransportType string `json:"transport_type,omitempty" jsonschema:"Transport type to validate against. Detected from the document when empty"`
}

// TransportTypeArgs select a single transport type.
type TransportTypeArgs struct {
	TransportType string `json:"transport_type" jsonschema:"Transport type: simple_road, complex_road or ocean_visibility"`
}

// InstructionsArgs are the arguments of the instructions tool.
type InstructionsArgs struct {
	Type string `json:"type,omitempty" jsonschema:"Instruction type: general, tool_usage, transport_types, error_handling or best_practices"`
}

// envelope is satisfied by every service result through model.Envelope.
type envelope interface {
	IsSuccess() bool
}

// addTransportOrderTools registers the six transport order tools. Every tool
// answers with the JSON encoded service result as text content; failures are
// part of that result, so a tool call only errors when encoding fails.
func (s *Server) addTransportOrderTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: ToolGenerate,
		Description: "Generate transport order XML from order data. " +
			"Returns xml_content on success, otherwise errors and missing_required prompts.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GenerateArgs) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		return s.respond(ctx, ToolGenerate, start, s.service.Generate(ctx, args.TransportType, args.OrderData))
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name: ToolValidate,
		Description: "Validate transport order XML. Runs structural, business rule and cross field checks " +
			"and reports errors and warnings for each pass.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ValidateArgs) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		return s.respond(ctx, ToolValidate, start, s.service.Validate(ctx, args.XMLContent, args.TransportType))
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolTypeInfo,
		Description: "Describe a transport type: required and optional fields, fixed values, capabilities and example input.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args TransportTypeArgs) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		return s.respond(ctx, ToolTypeInfo, start, s.service.TypeInfo(ctx, args.TransportType))
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolListTypes,
		Description: "List the supported transport types with a short description of each.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		return s.respond(ctx, ToolListTypes, start, s.service.ListTypes(ctx))
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolExample,
		Description: "Return example order data for a transport type together with the XML it produces.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args TransportTypeArgs) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		return s.respond(ctx, ToolExample, start, s.service.Example(ctx, args.TransportType))
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name: ToolRequirements,
		Description: "List parameter definitions, fixed parameters, business rules and validation rules " +
			"that apply to a transport type.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args TransportTypeArgs) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		return s.respond(ctx, ToolRequirements, start, s.service.ParameterRequirements(ctx, args.TransportType))
	})
}

// addInstructionTools registers the instructions tool, which renders one of
// the embedded instruction documents.
func (s *Server) addInstructionTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolInstructions,
		Description: "Usage instructions for this server. Choose general, tool_usage, transport_types, error_handling or best_practices.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args InstructionsArgs) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		cfg := &InstructionConfig{Type: InstructionType(args.Type), EnableFallback: true}
		if cfg.Type == "" {
			cfg.Type = GeneralInstructions
		}
		if s.options.Instructions != nil {
			cfg.TemplateData = s.options.Instructions.TemplateData
		}

		text := s.instructions(cfg)
		metrics.GlobalRecorder.RecordToolCall(start, ToolInstructions, true)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: text},
			},
		}, nil, nil
	})
}

func (s *Server) respond(ctx context.Context, tool string, start time.Time, res envelope) (*mcp.CallToolResult, any, error) {
	body, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		metrics.GlobalRecorder.RecordToolCall(start, tool, false)
		logger.FromContext(ctx).Named("mcp").Error("encode tool result",
			zap.String("tool", tool), zap.Error(err))
		return nil, nil, err
	}

	metrics.GlobalRecorder.RecordToolCall(start, tool, res.IsSuccess())
	logger.FromContext(ctx).Named("mcp").Debug("tool called",
		zap.String("tool", tool),
		zap.Bool("success", res.IsSuccess()),
		zap.Duration("took", time.Since(start)))

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(body)},
		},
	}, nil, nil
}
