package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "toxml_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status_code"})
	httpActiveRequests = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "toxml_http_active_requests",
		Help: "Number of active HTTP requests",
	}, []string{"path", "method"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "toxml_generation_duration_seconds",
		Help:    "Duration of transport order XML generation",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"transport_type", "success", "error_type"})
	validationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "toxml_validation_duration_seconds",
		Help:    "Duration of transport order XML validation",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"transport_type", "valid"})
	validationProblems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toxml_validation_problems_total",
		Help: "Errors and warnings reported by validation",
	}, []string{"transport_type", "severity"})

	toolCalls = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "toxml_tool_call_duration_seconds",
		Help:    "Duration of MCP tool calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"tool", "success"})

	catalogReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toxml_catalog_reloads_total",
		Help: "Catalog cache invalidations",
	}, []string{"reason"})
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toxml_errors_total",
		Help: "Total number of errors",
	}, []string{"error_type", "component"})

	buildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "toxml_build_info",
		Help: "Build information, value is the process start time",
	}, []string{"version", "build_time", "go_version"})
)

// PrometheusRecorder implements metrics.MetricsRecorder on the default registry.
// The zero value is ready to use.
type PrometheusRecorder struct{}

// RecordHTTPRequest records HTTP request metrics
func (p *PrometheusRecorder) RecordHTTPRequest(startTime time.Time, path, method, statusCode string) {
	httpRequestDuration.WithLabelValues(path, method, statusCode).Observe(time.Since(startTime).Seconds())
}

// RecordHTTPActiveRequest records active HTTP request metrics
func (p *PrometheusRecorder) RecordHTTPActiveRequest(path, method string, delta float64) {
	httpActiveRequests.WithLabelValues(path, method).Add(delta)
}

// RecordGeneration records one generate call
func (p *PrometheusRecorder) RecordGeneration(startTime time.Time, transportType string, success bool, errorType string) {
	generationDuration.WithLabelValues(transportType, strconv.FormatBool(success), errorType).
		Observe(time.Since(startTime).Seconds())
}

// RecordValidation records one validate call
func (p *PrometheusRecorder) RecordValidation(startTime time.Time, transportType string, valid bool, errorCount, warningCount int) {
	validationDuration.WithLabelValues(transportType, strconv.FormatBool(valid)).Observe(time.Since(startTime).Seconds())
	if errorCount > 0 {
		validationProblems.WithLabelValues(transportType, "error").Add(float64(errorCount))
	}
	if warningCount > 0 {
		validationProblems.WithLabelValues(transportType, "warning").Add(float64(warningCount))
	}
}

// RecordToolCall records one MCP tool invocation
func (p *PrometheusRecorder) RecordToolCall(startTime time.Time, tool string, success bool) {
	toolCalls.WithLabelValues(tool, strconv.FormatBool(success)).Observe(time.Since(startTime).Seconds())
}

// RecordCatalogReload records a catalog cache invalidation
func (p *PrometheusRecorder) RecordCatalogReload(reason string) {
	catalogReloads.WithLabelValues(reason).Inc()
}

// RecordError records error metrics
func (p *PrometheusRecorder) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// InitSystemMetrics records build information
func (p *PrometheusRecorder) InitSystemMetrics(version, buildTime, goVersion string, startTime time.Time) {
	buildInfo.WithLabelValues(version, buildTime, goVersion).Set(float64(startTime.Unix()))
}
