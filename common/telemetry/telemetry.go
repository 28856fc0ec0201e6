// Package telemetry exports traces and metrics of the toxml server over
// OTLP/HTTP when otel.enabled is set.
package telemetry

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Laisky/transport-order-mcp/common"
	"github.com/Laisky/transport-order-mcp/common/config"
	"github.com/Laisky/transport-order-mcp/common/logger"
)

const (
	metricInterval   = 15 * time.Second
	serviceNamespace = "transport-orders"
)

// ProviderBundle owns the providers installed by InitOpenTelemetry.
// A nil bundle is valid and shuts down as a no-op.
type ProviderBundle struct {
	shutdowns []func(context.Context) error
}

// InitOpenTelemetry installs global tracer and meter providers and the W3C
// propagators. It returns nil when otel is disabled.
func InitOpenTelemetry(ctx context.Context) (*ProviderBundle, error) {
	if !config.OpenTelemetryEnabled {
		return nil, nil
	}
	if config.OpenTelemetryEndpoint == "" {
		return nil, errors.New("otel.endpoint (TOXML_OTEL_ENDPOINT or OTEL_EXPORTER_OTLP_ENDPOINT) is required when otel.enabled is true")
	}

	res, err := sdkresource.New(ctx,
		sdkresource.WithFromEnv(),
		sdkresource.WithHost(),
		sdkresource.WithTelemetrySDK(),
		sdkresource.WithAttributes(resourceAttributes()...),
	)
	if err != nil {
		return nil, errors.Wrap(err, "build otel resource")
	}

	bundle := &ProviderBundle{}

	traceOpts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(config.OpenTelemetryEndpoint),
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	}
	metricOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.OpenTelemetryEndpoint),
		otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression),
	}
	if config.OpenTelemetryInsecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}

	spans, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "create otlp trace exporter")
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(spans), sdktrace.WithResource(res))
	bundle.shutdowns = append(bundle.shutdowns, tp.Shutdown)

	points, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		_ = bundle.Shutdown(ctx)
		return nil, errors.Wrap(err, "create otlp metric exporter")
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(points, sdkmetric.WithInterval(metricInterval))),
		sdkmetric.WithResource(res),
	)
	bundle.shutdowns = append(bundle.shutdowns, mp.Shutdown)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.FromContext(ctx).Named("telemetry").Info("exporting traces and metrics",
		zap.String("endpoint", config.OpenTelemetryEndpoint),
		zap.String("service", config.OpenTelemetryServiceName),
		zap.String("mcp_transport", config.MCPTransport))
	return bundle, nil
}

// Shutdown flushes the providers, newest first.
func (p *ProviderBundle) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}

	var errs []error
	for i := len(p.shutdowns) - 1; i >= 0; i-- {
		if err := p.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdowns = nil

	if err := stdErrors.Join(errs...); err != nil {
		return errors.Wrap(err, "shutdown otel providers")
	}
	return nil
}

func resourceAttributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", config.OpenTelemetryServiceName),
		attribute.String("service.namespace", serviceNamespace),
		attribute.String("service.version", common.Version),
		attribute.String("toxml.mcp.transport", config.MCPTransport),
	}
	if config.OpenTelemetryEnvironment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", config.OpenTelemetryEnvironment))
	}
	return attrs
}
