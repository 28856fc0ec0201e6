package mcp

import (
	"bytes"
	"fmt"
	"path"
	"slices"
	"strings"
	"text/template"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/transport-order-mcp/common/logger"
	"github.com/Laisky/transport-order-mcp/order"
)

const instructionDir = "docs/templates/instructions"

// InstructionRenderer renders the embedded instruction templates.
type InstructionRenderer struct {
	templates map[InstructionType]*template.Template
}

// globalInstructionRenderer is nil when the embedded templates fail to parse,
// in which case fallback instructions are used.
var globalInstructionRenderer *InstructionRenderer

func init() {
	var err error
	if globalInstructionRenderer, err = NewInstructionRenderer(); err != nil {
		logger.Logger.Error("load instruction templates", zap.Error(err))
		globalInstructionRenderer = nil
	}
}

// NewInstructionRenderer parses every template under docs/templates/instructions.
// The file name without its extension is the instruction type.
func NewInstructionRenderer() (*InstructionRenderer, error) {
	entries, err := templateFS.ReadDir(instructionDir)
	if err != nil {
		return nil, errors.Wrap(err, "read instruction templates")
	}

	r := &InstructionRenderer{templates: make(map[InstructionType]*template.Template)}
	funcs := template.FuncMap{
		"join":      strings.Join,
		"joinTools": joinTools,
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tmpl") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".tmpl")
		content, err := templateFS.ReadFile(path.Join(instructionDir, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "read instruction template %s", entry.Name())
		}
		tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
		if err != nil {
			return nil, errors.Wrapf(err, "parse instruction template %s", entry.Name())
		}
		r.templates[InstructionType(name)] = tmpl
	}

	return r, nil
}

// GenerateInstructions renders the instructions of the given type.
func (r *InstructionRenderer) GenerateInstructions(t InstructionType, data InstructionTemplateData) (string, error) {
	tmpl, ok := r.templates[t]
	if !ok {
		return "", errors.Errorf("unknown instruction type: %s", t)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "execute instruction template %s", t)
	}
	return buf.String(), nil
}

// GetAvailableInstructionTypes returns the loaded instruction types, sorted.
func (r *InstructionRenderer) GetAvailableInstructionTypes() []InstructionType {
	types := make([]InstructionType, 0, len(r.templates))
	for t := range r.templates {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// IsInstructionTypeSupported checks if an instruction type has a template.
func (r *InstructionRenderer) IsInstructionTypeSupported(t InstructionType) bool {
	_, ok := r.templates[t]
	return ok
}

func (r *InstructionRenderer) generateFallbackInstructions(instructionType string, data InstructionTemplateData) string {
	return generateFallbackInstructions(instructionType, data)
}

// generateFallbackInstructions is used when a template is missing or fails.
func generateFallbackInstructions(instructionType string, data InstructionTemplateData) string {
	return fmt.Sprintf(`# %s %s

Instructions of type '%s' are not available.

## Server
%s

## Available tools
%s`, data.ServerName, data.ServerVersion, instructionType, data.BaseURL, joinTools(data.AvailableTools))
}

func joinTools(tools []string) string {
	if len(tools) == 0 {
		return "No tools available"
	}

	var b strings.Builder
	for _, tool := range tools {
		b.WriteString("- ")
		b.WriteString(tool)
		b.WriteString("\n")
	}
	return b.String()
}

// templateData collects what the instruction templates may reference.
func (s *Server) templateData(extra map[string]any) InstructionTemplateData {
	custom := make(map[string]any, len(s.options.CustomTemplateData)+len(extra))
	for k, v := range s.options.CustomTemplateData {
		custom[k] = v
	}
	for k, v := range extra {
		custom[k] = v
	}

	return InstructionTemplateData{
		BaseURL:        s.getEffectiveBaseURL(),
		ServerName:     s.options.Name,
		ServerVersion:  s.options.Version,
		AvailableTools: s.getAvailableToolNames(),
		TransportTypes: order.TypeNames(),
		CustomData:     custom,
	}
}

// instructions renders cfg. Custom text wins over templates; a template
// failure yields the fallback text unless cfg disables it.
func (s *Server) instructions(cfg *InstructionConfig) string {
	if cfg == nil {
		cfg = &InstructionConfig{Type: GeneralInstructions, EnableFallback: true}
	}
	if cfg.CustomInstructions != "" {
		return cfg.CustomInstructions
	}

	data := s.templateData(cfg.TemplateData)
	if globalInstructionRenderer == nil {
		return generateFallbackInstructions(string(cfg.Type), data)
	}

	text, err := globalInstructionRenderer.GenerateInstructions(cfg.Type, data)
	if err != nil {
		logger.Logger.Named("mcp").Warn("render instructions",
			zap.String("type", string(cfg.Type)), zap.Error(err))
		if !cfg.EnableFallback {
			return ""
		}
		return generateFallbackInstructions(string(cfg.Type), data)
	}
	return text
}
