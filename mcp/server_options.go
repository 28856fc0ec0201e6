package mcp

import (
	"github.com/Laisky/errors/v2"

	"github.com/Laisky/transport-order-mcp/common"
)

// InstructionType represents the available instruction types that can be generated.
// Each type corresponds to a template under docs/templates/instructions.
type InstructionType string

// Supported instruction types.
const (
	GeneralInstructions       InstructionType = "general"        // Overview of the server and its workflow
	ToolUsageInstructions     InstructionType = "tool_usage"     // Arguments and results of every tool
	TransportTypeInstructions InstructionType = "transport_types" // Fields and rules per transport type
	ErrorHandlingInstructions InstructionType = "error_handling" // Error categories and how to recover
	BestPracticesInstructions InstructionType = "best_practices" // Recommended call sequence
)

// DefaultServerName is the implementation name announced to MCP clients.
const DefaultServerName = "transport-order-mcp"

// ServerOptions contains configuration options for creating an MCP server instance.
type ServerOptions struct {
	// Name is the server implementation name (defaults to DefaultServerName)
	Name string

	// Version is the server implementation version (defaults to common.Version)
	Version string

	// Instructions contains custom instructions for the server
	Instructions *InstructionConfig

	// BaseURL overrides the public address shown in the instructions
	BaseURL string

	// EnableInstructions determines whether instructions are sent on initialize
	// and whether the instructions tool is registered
	EnableInstructions bool

	// CustomTemplateData allows passing additional data to templates
	CustomTemplateData map[string]any
}

// InstructionConfig holds configuration for server instructions.
type InstructionConfig struct {
	// Type specifies which instruction template to use
	Type InstructionType

	// CustomInstructions provides custom instruction text (overrides template)
	CustomInstructions string

	// TemplateData contains data to be passed to instruction templates
	TemplateData map[string]any

	// EnableFallback determines whether to use fallback instructions if template fails
	EnableFallback bool
}

// InstructionTemplateData holds the data used for rendering instruction templates.
type InstructionTemplateData struct {
	BaseURL        string         // Public address of the server
	ServerName     string         // Name of the MCP server
	ServerVersion  string         // Version of the MCP server
	AvailableTools []string       // List of available tools
	TransportTypes []string       // Supported transport types
	CustomData     map[string]any // Custom data from ServerOptions
}

// DefaultServerOptions returns a ServerOptions instance with sensible defaults.
func DefaultServerOptions() *ServerOptions {
	return &ServerOptions{
		Name:               DefaultServerName,
		Version:            common.Version,
		EnableInstructions: true,
		Instructions: &InstructionConfig{
			Type:           GeneralInstructions,
			EnableFallback: true,
			TemplateData:   make(map[string]any),
		},
		CustomTemplateData: make(map[string]any),
	}
}

// WithName sets the server name.
func (opts *ServerOptions) WithName(name string) *ServerOptions {
	opts.Name = name
	return opts
}

// WithVersion sets the server version.
func (opts *ServerOptions) WithVersion(version string) *ServerOptions {
	opts.Version = version
	return opts
}

// WithInstructions sets the instruction configuration.
func (opts *ServerOptions) WithInstructions(config *InstructionConfig) *ServerOptions {
	opts.Instructions = config
	opts.EnableInstructions = true
	return opts
}

// WithCustomInstructions sets custom instruction text directly.
func (opts *ServerOptions) WithCustomInstructions(instructions string) *ServerOptions {
	opts.ensureInstructions()
	opts.Instructions.CustomInstructions = instructions
	opts.EnableInstructions = true
	return opts
}

// WithInstructionType sets the instruction template type.
func (opts *ServerOptions) WithInstructionType(instructionType InstructionType) *ServerOptions {
	opts.ensureInstructions()
	opts.Instructions.Type = instructionType
	opts.EnableInstructions = true
	return opts
}

func (opts *ServerOptions) ensureInstructions() {
	if opts.Instructions == nil {
		opts.Instructions = &InstructionConfig{
			EnableFallback: true,
			TemplateData:   make(map[string]any),
		}
	}
}

// WithBaseURL sets the public address shown in the instructions.
func (opts *ServerOptions) WithBaseURL(baseURL string) *ServerOptions {
	opts.BaseURL = baseURL
	return opts
}

// WithCustomTemplateData adds custom data that will be available in templates.
func (opts *ServerOptions) WithCustomTemplateData(key string, value any) *ServerOptions {
	if opts.CustomTemplateData == nil {
		opts.CustomTemplateData = make(map[string]any)
	}
	opts.CustomTemplateData[key] = value
	return opts
}

// DisableInstructions disables instruction generation for this server.
func (opts *ServerOptions) DisableInstructions() *ServerOptions {
	opts.EnableInstructions = false
	return opts
}

// Validate checks if the ServerOptions configuration is valid.
func (opts *ServerOptions) Validate() error {
	if opts.Name == "" {
		return errors.New("server name cannot be empty")
	}

	if opts.Version == "" {
		return errors.New("server version cannot be empty")
	}

	if opts.EnableInstructions && opts.Instructions != nil {
		if opts.Instructions.Type == "" && opts.Instructions.CustomInstructions == "" {
			return errors.New("instruction type or custom instructions must be specified when instructions are enabled")
		}
	}

	return nil
}

// GetEffectiveBaseURL returns the base URL to use, considering the options and fallbacks.
func (opts *ServerOptions) GetEffectiveBaseURL() string {
	if opts.BaseURL != "" {
		return opts.BaseURL
	}
	return getBaseURL()
}
