package metrics

import (
	"time"
)

// MetricsRecorder defines the interface for recording metrics
type MetricsRecorder interface {
	// HTTP metrics
	RecordHTTPRequest(startTime time.Time, path, method, statusCode string)
	RecordHTTPActiveRequest(path, method string, delta float64)

	// Pipeline metrics
	RecordGeneration(startTime time.Time, transportType string, success bool, errorType string)
	RecordValidation(startTime time.Time, transportType string, valid bool, errorCount, warningCount int)

	// MCP metrics
	RecordToolCall(startTime time.Time, tool string, success bool)

	// Catalog metrics
	RecordCatalogReload(reason string)

	// Error metrics
	RecordError(errorType, component string)

	// System metrics
	InitSystemMetrics(version, buildTime, goVersion string, startTime time.Time)
}

// GlobalRecorder holds the active metrics recorder implementation.
var GlobalRecorder MetricsRecorder

// NoOpRecorder is a no-operation implementation for when metrics are disabled
type NoOpRecorder struct{}

// RecordHTTPRequest implements MetricsRecorder.RecordHTTPRequest without collecting any data.
func (n *NoOpRecorder) RecordHTTPRequest(startTime time.Time, path, method, statusCode string) {}

// RecordHTTPActiveRequest implements MetricsRecorder.RecordHTTPActiveRequest without collecting any data.
func (n *NoOpRecorder) RecordHTTPActiveRequest(path, method string, delta float64) {}

// RecordGeneration implements MetricsRecorder.RecordGeneration without collecting any data.
func (n *NoOpRecorder) RecordGeneration(startTime time.Time, transportType string, success bool, errorType string) {
}

// RecordValidation implements MetricsRecorder.RecordValidation without collecting any data.
func (n *NoOpRecorder) RecordValidation(startTime time.Time, transportType string, valid bool, errorCount, warningCount int) {
}

// RecordToolCall implements MetricsRecorder.RecordToolCall without collecting any data.
func (n *NoOpRecorder) RecordToolCall(startTime time.Time, tool string, success bool) {}

// RecordCatalogReload implements MetricsRecorder.RecordCatalogReload without collecting any data.
func (n *NoOpRecorder) RecordCatalogReload(reason string) {}

// RecordError implements MetricsRecorder.RecordError without collecting any data.
func (n *NoOpRecorder) RecordError(errorType, component string) {}

// InitSystemMetrics implements MetricsRecorder.InitSystemMetrics without collecting any data.
func (n *NoOpRecorder) InitSystemMetrics(version, buildTime, goVersion string, startTime time.Time) {}

// Initialize with no-op recorder by default
func init() {
	GlobalRecorder = &NoOpRecorder{}
}

// MultiRecorder wraps multiple MetricsRecorder implementations
type MultiRecorder struct {
	Recorders []MetricsRecorder
}

// RecordHTTPRequest implements MetricsRecorder.RecordHTTPRequest
func (m *MultiRecorder) RecordHTTPRequest(startTime time.Time, path, method, statusCode string) {
	for _, r := range m.Recorders {
		r.RecordHTTPRequest(startTime, path, method, statusCode)
	}
}

// RecordHTTPActiveRequest implements MetricsRecorder.RecordHTTPActiveRequest
func (m *MultiRecorder) RecordHTTPActiveRequest(path, method string, delta float64) {
	for _, r := range m.Recorders {
		r.RecordHTTPActiveRequest(path, method, delta)
	}
}

// RecordGeneration implements MetricsRecorder.RecordGeneration
func (m *MultiRecorder) RecordGeneration(startTime time.Time, transportType string, success bool, errorType string) {
	for _, r := range m.Recorders {
		r.RecordGeneration(startTime, transportType, success, errorType)
	}
}

// RecordValidation implements MetricsRecorder.RecordValidation
func (m *MultiRecorder) RecordValidation(startTime time.Time, transportType string, valid bool, errorCount, warningCount int) {
	for _, r := range m.Recorders {
		r.RecordValidation(startTime, transportType, valid, errorCount, warningCount)
	}
}

// RecordToolCall implements MetricsRecorder.RecordToolCall
func (m *MultiRecorder) RecordToolCall(startTime time.Time, tool string, success bool) {
	for _, r := range m.Recorders {
		r.RecordToolCall(startTime, tool, success)
	}
}

// RecordCatalogReload implements MetricsRecorder.RecordCatalogReload
func (m *MultiRecorder) RecordCatalogReload(reason string) {
	for _, r := range m.Recorders {
		r.RecordCatalogReload(reason)
	}
}

// RecordError implements MetricsRecorder.RecordError
func (m *MultiRecorder) RecordError(errorType, component string) {
	for _, r := range m.Recorders {
		r.RecordError(errorType, component)
	}
}

// InitSystemMetrics implements MetricsRecorder.InitSystemMetrics
func (m *MultiRecorder) InitSystemMetrics(version, buildTime, goVersion string, startTime time.Time) {
	for _, r := range m.Recorders {
		r.InitSystemMetrics(version, buildTime, goVersion, startTime)
	}
}
