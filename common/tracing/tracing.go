// Package tracing holds the span helpers used by the generation and validation pipeline.
package tracing

import (
	"context"

	"github.com/Laisky/zap"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// instrumentationName is the tracer name reported on every span.
const instrumentationName = "github.com/Laisky/transport-order-mcp"

// StartSpan opens a span on the global tracer provider. When telemetry is
// disabled the global provider is a no-op and this costs nothing.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, oteltrace.WithAttributes(attrs...))
}

// EndSpan records the outcome of an operation and ends span.
// problems are the user facing errors reported as data; err is an internal failure.
func EndSpan(span oteltrace.Span, problems []string, err error) {
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case len(problems) > 0:
		span.SetAttributes(attribute.Int("toxml.problem_count", len(problems)))
		span.SetStatus(codes.Error, problems[0])
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// GetTraceIDFromContext returns the OpenTelemetry trace id carried by ctx, or "".
func GetTraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// WithTraceIDFromContext prepends the trace id to structured logging fields.
func WithTraceIDFromContext(ctx context.Context, fields ...zap.Field) []zap.Field {
	traceID := GetTraceIDFromContext(ctx)
	if traceID == "" {
		return fields
	}

	return append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
}

// NewOperationID returns an id for one generate or validate call.
// It reuses the trace id when tracing is active so logs, spans and results line up.
func NewOperationID(ctx context.Context) string {
	if traceID := GetTraceIDFromContext(ctx); traceID != "" {
		return traceID
	}
	return uuid.NewString()
}
