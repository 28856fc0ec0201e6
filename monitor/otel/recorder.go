package otel

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OtelRecorder implements the MetricsRecorder interface using OpenTelemetry
type OtelRecorder struct {
	meter metric.Meter

	// HTTP metrics
	httpRequestDuration metric.Float64Histogram
	httpRequestsTotal   metric.Int64Counter
	httpActiveRequests  metric.Float64UpDownCounter

	// Pipeline metrics
	generationDuration metric.Float64Histogram
	generationsTotal   metric.Int64Counter
	validationDuration metric.Float64Histogram
	validationsTotal   metric.Int64Counter
	validationProblems metric.Int64Counter

	// MCP metrics
	toolCallDuration metric.Float64Histogram
	toolCallsTotal   metric.Int64Counter

	catalogReloads metric.Int64Counter
	errorsTotal    metric.Int64Counter

	startTime metric.Int64Gauge
}

// NewOtelRecorder creates a new OtelRecorder
func NewOtelRecorder() (*OtelRecorder, error) {
	meter := otel.Meter("transport-order-mcp")
	r := &OtelRecorder{meter: meter}

	var err error
	// HTTP metrics
	if r.httpRequestDuration, err = meter.Float64Histogram("toxml_http_request_duration_seconds", metric.WithDescription("Duration of HTTP requests in seconds")); err != nil {
		return nil, err
	}
	if r.httpRequestsTotal, err = meter.Int64Counter("toxml_http_requests_total", metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if r.httpActiveRequests, err = meter.Float64UpDownCounter("toxml_http_active_requests", metric.WithDescription("Number of active HTTP requests")); err != nil {
		return nil, err
	}

	// Pipeline metrics
	if r.generationDuration, err = meter.Float64Histogram("toxml_generation_duration_seconds", metric.WithDescription("Duration of transport order XML generation")); err != nil {
		return nil, err
	}
	if r.generationsTotal, err = meter.Int64Counter("toxml_generations_total", metric.WithDescription("Total number of generation calls")); err != nil {
		return nil, err
	}
	if r.validationDuration, err = meter.Float64Histogram("toxml_validation_duration_seconds", metric.WithDescription("Duration of transport order XML validation")); err != nil {
		return nil, err
	}
	if r.validationsTotal, err = meter.Int64Counter("toxml_validations_total", metric.WithDescription("Total number of validation calls")); err != nil {
		return nil, err
	}
	if r.validationProblems, err = meter.Int64Counter("toxml_validation_problems_total", metric.WithDescription("Errors and warnings reported by validation")); err != nil {
		return nil, err
	}

	// MCP metrics
	if r.toolCallDuration, err = meter.Float64Histogram("toxml_tool_call_duration_seconds", metric.WithDescription("Duration of MCP tool calls")); err != nil {
		return nil, err
	}
	if r.toolCallsTotal, err = meter.Int64Counter("toxml_tool_calls_total", metric.WithDescription("Total number of MCP tool calls")); err != nil {
		return nil, err
	}

	if r.catalogReloads, err = meter.Int64Counter("toxml_catalog_reloads_total", metric.WithDescription("Catalog cache invalidations")); err != nil {
		return nil, err
	}
	if r.errorsTotal, err = meter.Int64Counter("toxml_errors_total", metric.WithDescription("Total number of errors")); err != nil {
		return nil, err
	}
	if r.startTime, err = meter.Int64Gauge("toxml_start_time_seconds", metric.WithDescription("Process start time as unix seconds")); err != nil {
		return nil, err
	}

	return r, nil
}

// RecordHTTPRequest records HTTP request metrics
func (r *OtelRecorder) RecordHTTPRequest(startTime time.Time, path, method, statusCode string) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("path", path),
		attribute.String("method", method),
		attribute.String("status_code", statusCode),
	)
	r.httpRequestDuration.Record(ctx, time.Since(startTime).Seconds(), attrs)
	r.httpRequestsTotal.Add(ctx, 1, attrs)
}

// RecordHTTPActiveRequest records active HTTP request metrics
func (r *OtelRecorder) RecordHTTPActiveRequest(path, method string, delta float64) {
	r.httpActiveRequests.Add(context.Background(), delta, metric.WithAttributes(
		attribute.String("path", path),
		attribute.String("method", method),
	))
}

// RecordGeneration records one generate call
func (r *OtelRecorder) RecordGeneration(startTime time.Time, transportType string, success bool, errorType string) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("transport_type", transportType),
		attribute.String("success", strconv.FormatBool(success)),
		attribute.String("error_type", errorType),
	)
	r.generationDuration.Record(ctx, time.Since(startTime).Seconds(), attrs)
	r.generationsTotal.Add(ctx, 1, attrs)
}

// RecordValidation records one validate call
func (r *OtelRecorder) RecordValidation(startTime time.Time, transportType string, valid bool, errorCount, warningCount int) {
	ctx := context.Background()
	attrs := []attribute.KeyValue{
		attribute.String("transport_type", transportType),
		attribute.String("valid", strconv.FormatBool(valid)),
	}
	r.validationDuration.Record(ctx, time.Since(startTime).Seconds(), metric.WithAttributes(attrs...))
	r.validationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	if errorCount > 0 {
		r.validationProblems.Add(ctx, int64(errorCount), metric.WithAttributes(
			attribute.String("transport_type", transportType), attribute.String("severity", "error")))
	}
	if warningCount > 0 {
		r.validationProblems.Add(ctx, int64(warningCount), metric.WithAttributes(
			attribute.String("transport_type", transportType), attribute.String("severity", "warning")))
	}
}

// RecordToolCall records one MCP tool invocation
func (r *OtelRecorder) RecordToolCall(startTime time.Time, tool string, success bool) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("success", strconv.FormatBool(success)),
	)
	r.toolCallDuration.Record(ctx, time.Since(startTime).Seconds(), attrs)
	r.toolCallsTotal.Add(ctx, 1, attrs)
}

// RecordCatalogReload records a catalog cache invalidation
func (r *OtelRecorder) RecordCatalogReload(reason string) {
	r.catalogReloads.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordError records error metrics
func (r *OtelRecorder) RecordError(errorType, component string) {
	r.errorsTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("error_type", errorType),
		attribute.String("component", component),
	))
}

// InitSystemMetrics records build information and the start time
func (r *OtelRecorder) InitSystemMetrics(version, buildTime, goVersion string, startTime time.Time) {
	r.startTime.Record(context.Background(), startTime.Unix(), metric.WithAttributes(
		attribute.String("version", version),
		attribute.String("build_time", buildTime),
		attribute.String("go_version", goVersion),
	))
}
