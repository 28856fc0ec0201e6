package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Laisky/transport-order-mcp/common/metrics"
)

var _ metrics.MetricsRecorder = (*PrometheusRecorder)(nil)

func TestPrometheusRecorderCounters(t *testing.T) {
	r := &PrometheusRecorder{}

	before := testutil.ToFloat64(validationProblems.WithLabelValues("ocean_visibility", "error"))
	r.RecordValidation(time.Now(), "ocean_visibility", false, 3, 0)
	after := testutil.ToFloat64(validationProblems.WithLabelValues("ocean_visibility", "error"))
	assert.Equal(t, before+3, after)

	r.RecordCatalogReload("manual")
	assert.GreaterOrEqual(t, testutil.ToFloat64(catalogReloads.WithLabelValues("manual")), 1.0)

	r.RecordError("generation_error", "generator")
	assert.GreaterOrEqual(t, testutil.ToFloat64(errorsTotal.WithLabelValues("generation_error", "generator")), 1.0)
}
