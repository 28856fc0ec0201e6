package telemetry

import (
	"context"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/transport-order-mcp/common/config"
)

func TestInitOpenTelemetryDisabled(t *testing.T) {
	old := config.OpenTelemetryEnabled
	t.Cleanup(func() { config.OpenTelemetryEnabled = old })
	config.OpenTelemetryEnabled = false

	bundle, err := InitOpenTelemetry(context.Background())
	require.NoError(t, err)
	assert.Nil(t, bundle)
	assert.NoError(t, bundle.Shutdown(context.Background()), "nil bundle shuts down cleanly")
}

func TestInitOpenTelemetryRequiresEndpoint(t *testing.T) {
	oldEnabled, oldEndpoint := config.OpenTelemetryEnabled, config.OpenTelemetryEndpoint
	t.Cleanup(func() {
		config.OpenTelemetryEnabled, config.OpenTelemetryEndpoint = oldEnabled, oldEndpoint
	})
	config.OpenTelemetryEnabled = true
	config.OpenTelemetryEndpoint = ""

	_, err := InitOpenTelemetry(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "otel.endpoint")
}

func TestResourceAttributes(t *testing.T) {
	oldEnv, oldTransport := config.OpenTelemetryEnvironment, config.MCPTransport
	t.Cleanup(func() { config.OpenTelemetryEnvironment, config.MCPTransport = oldEnv, oldTransport })

	config.OpenTelemetryEnvironment = ""
	config.MCPTransport = "stdio"
	got := map[string]string{}
	for _, kv := range resourceAttributes() {
		got[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, "transport-orders", got["service.namespace"])
	assert.Equal(t, "stdio", got["toxml.mcp.transport"])
	assert.NotContains(t, got, "deployment.environment")

	config.OpenTelemetryEnvironment = "staging"
	assert.Len(t, resourceAttributes(), len(got)+1)
}

func TestShutdownRunsNewestFirst(t *testing.T) {
	var order []string
	bundle := &ProviderBundle{shutdowns: []func(context.Context) error{
		func(context.Context) error { order = append(order, "traces"); return nil },
		func(context.Context) error { order = append(order, "metrics"); return errors.New("exporter gone") },
	}}

	err := bundle.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exporter gone")
	assert.Equal(t, []string{"metrics", "traces"}, order)
	assert.NoError(t, bundle.Shutdown(context.Background()), "second shutdown is a no-op")
}
