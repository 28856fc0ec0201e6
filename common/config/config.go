// Package config holds process wide settings.
//
// Values are plain package variables so that hot paths can read them without
// locking. Load fills them from (highest priority first) TOXML_* environment
// variables, an optional YAML config file and the defaults below.
package config

import (
	stdErrors "errors"
	"os"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TOXML_SERVER_LISTEN.
const EnvPrefix = "TOXML"

var (
	// ServerAddress is the public base URL advertised in MCP instructions.
	ServerAddress = ""
	// ListenAddress is the HTTP bind address for `serve --transport http`.
	ListenAddress = ":8080"
	// MCPTransport selects how the MCP server is exposed: "http" or "stdio".
	MCPTransport = "http"
	// MCPPath is the route of the streamable HTTP endpoint.
	MCPPath = "/mcp"

	DebugEnabled = false
	LogLevel     = "info"
	// LogBodyLimit caps request payload previews written to debug logs.
	LogBodyLimit = 4096

	// CatalogDir optionally overlays the embedded templates and definitions.
	CatalogDir = ""
	// CatalogWatch reloads CatalogDir on change.
	CatalogWatch = false
	// CatalogCacheTTL is how long parsed templates and definitions stay cached. Zero keeps them forever.
	CatalogCacheTTL = 10 * time.Minute

	EnablePrometheusMetrics = true

	OpenTelemetryEnabled     = false
	OpenTelemetryEndpoint    = ""
	OpenTelemetryInsecure    = false
	OpenTelemetryServiceName = "transport-order-mcp"
	OpenTelemetryEnvironment = ""
)

// Load reads configuration into the package variables.
//
// cfgFile may be empty, in which case TOXML_CONFIG_FILE or ./.toxml.yaml is tried.
// A missing default config file is not an error; a missing explicit one is.
func Load(cfgFile string) error {
	v := viper.New()
	setDefaults(v)

	explicit := true
	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case os.Getenv(EnvPrefix+"_CONFIG_FILE") != "":
		v.SetConfigFile(os.Getenv(EnvPrefix + "_CONFIG_FILE"))
	default:
		explicit = false
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".toxml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// the OTLP exporter conventionally reads these without our prefix
	_ = v.BindEnv("otel.endpoint", EnvPrefix+"_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv("otel.service_name", EnvPrefix+"_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !stdErrors.As(err, &notFound) {
			return errors.Wrap(err, "read config file")
		}
	}

	apply(v)
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ServerAddress)
	v.SetDefault("server.listen", ListenAddress)
	v.SetDefault("mcp.transport", MCPTransport)
	v.SetDefault("mcp.path", MCPPath)
	v.SetDefault("debug", DebugEnabled)
	v.SetDefault("log.level", LogLevel)
	v.SetDefault("log.body_limit", LogBodyLimit)
	v.SetDefault("catalog.dir", CatalogDir)
	v.SetDefault("catalog.watch", CatalogWatch)
	v.SetDefault("catalog.cache_ttl", CatalogCacheTTL)
	v.SetDefault("metrics.prometheus", EnablePrometheusMetrics)
	v.SetDefault("otel.enabled", OpenTelemetryEnabled)
	v.SetDefault("otel.endpoint", OpenTelemetryEndpoint)
	v.SetDefault("otel.insecure", OpenTelemetryInsecure)
	v.SetDefault("otel.service_name", OpenTelemetryServiceName)
	v.SetDefault("otel.environment", OpenTelemetryEnvironment)
}

func apply(v *viper.Viper) {
	ServerAddress = strings.TrimSuffix(v.GetString("server.address"), "/")
	ListenAddress = v.GetString("server.listen")
	MCPTransport = strings.ToLower(v.GetString("mcp.transport"))
	MCPPath = v.GetString("mcp.path")
	DebugEnabled = v.GetBool("debug")
	LogLevel = strings.ToLower(v.GetString("log.level"))
	if DebugEnabled {
		LogLevel = "debug"
	}
	LogBodyLimit = v.GetInt("log.body_limit")
	CatalogDir = v.GetString("catalog.dir")
	CatalogWatch = v.GetBool("catalog.watch")
	CatalogCacheTTL = v.GetDuration("catalog.cache_ttl")
	EnablePrometheusMetrics = v.GetBool("metrics.prometheus")
	OpenTelemetryEnabled = v.GetBool("otel.enabled")
	OpenTelemetryEndpoint = v.GetString("otel.endpoint")
	OpenTelemetryInsecure = v.GetBool("otel.insecure")
	OpenTelemetryServiceName = v.GetString("otel.service_name")
	OpenTelemetryEnvironment = v.GetString("otel.environment")
}
