package common

// Version is overwritten at build time with -ldflags "-X github.com/Laisky/transport-order-mcp/common.Version=...".
var Version = "v0.0.0-dev"

// BuildTime is overwritten at build time.
var BuildTime = "unknown"
