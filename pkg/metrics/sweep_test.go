package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	got := map[string]string{}
	for _, pair := range metric.GetLabel() {
		got[pair.GetName()] = pair.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestSweepMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSweepMetrics(reg)

	m.IncSuccess("payment-status")
	m.IncSuccess("payment-status")
	m.IncFailure("crm-upload")
	m.IncOrdersPaid()
	m.IncCRMUpload("error")
	m.ObserveDuration("payment-status", 120*time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, reg, "sweep_job_success", map[string]string{"job": "payment-status"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "sweep_job_failure", map[string]string{"job": "crm-upload"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "sweep_orders_marked_paid", nil))
	assert.Equal(t, 1.0, counterValue(t, reg, "sweep_crm_uploads", map[string]string{"result": "error"}))
}

func TestSweepMetricsNilRegistererIsNoop(t *testing.T) {
	m := NewSweepMetrics(nil)

	m.IncSuccess("anything")
	m.IncFailure("anything")
	m.IncOrdersPaid()
	m.IncCRMUpload("ok")
	m.ObserveDuration("anything", time.Second)
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "unknown", normalizeLabel(""))
	assert.Equal(t, "crm-upload", normalizeLabel("crm-upload"))
}
