package mcp

import "embed"

// Note: instructions.go reads the instruction templates from here.

//go:embed docs/templates/instructions/*.tmpl
var templateFS embed.FS
