package monitor

import (
	"time"

	"github.com/Laisky/transport-order-mcp/common/config"
	"github.com/Laisky/transport-order-mcp/common/metrics"
	"github.com/Laisky/transport-order-mcp/monitor/otel"
	"github.com/Laisky/transport-order-mcp/monitor/prometheus"
)

// InitMonitoring selects the metrics recorders enabled in config and installs
// them as metrics.GlobalRecorder.
func InitMonitoring(version, buildTime, goVersion string, startTime time.Time) error {
	var recorders []metrics.MetricsRecorder

	if config.EnablePrometheusMetrics {
		recorders = append(recorders, &prometheus.PrometheusRecorder{})
	}

	if config.OpenTelemetryEnabled {
		otelRecorder, err := otel.NewOtelRecorder()
		if err != nil {
			return err
		}
		recorders = append(recorders, otelRecorder)
	}

	switch len(recorders) {
	case 0:
		metrics.GlobalRecorder = &metrics.NoOpRecorder{}
		return nil
	case 1:
		metrics.GlobalRecorder = recorders[0]
	default:
		metrics.GlobalRecorder = &metrics.MultiRecorder{Recorders: recorders}
	}

	metrics.GlobalRecorder.InitSystemMetrics(version, buildTime, goVersion, startTime)
	return nil
}
