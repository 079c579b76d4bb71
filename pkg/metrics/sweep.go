package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepMetrics records metadata for the scheduled reconciliation sweeps.
type SweepMetrics struct {
	duration   *prometheus.HistogramVec
	success    *prometheus.CounterVec
	failure    *prometheus.CounterVec
	ordersPaid prometheus.Counter
	crmUploads *prometheus.CounterVec
}

// NewSweepMetrics registers the sweep metrics on the provided registerer.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sweep_job_duration_seconds",
		Help:    "Duration of sweep jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweep_job_success",
		Help: "Successful sweep job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweep_job_failure",
		Help: "Failed sweep job executions.",
	}, []string{"job"})
	ordersPaid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweep_orders_marked_paid",
		Help: "Orders transitioned to paid by the payment sweep.",
	})
	crmUploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweep_crm_uploads",
		Help: "CRM order upload attempts by result.",
	}, []string{"result"})
	reg.MustRegister(duration, success, failure, ordersPaid, crmUploads)
	return &SweepMetrics{
		duration:   duration,
		success:    success,
		failure:    failure,
		ordersPaid: ordersPaid,
		crmUploads: crmUploads,
	}
}

// ObserveDuration records the duration for the named job.
func (s *SweepMetrics) ObserveDuration(job string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (s *SweepMetrics) IncSuccess(job string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (s *SweepMetrics) IncFailure(job string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncOrdersPaid counts an order transitioned to paid.
func (s *SweepMetrics) IncOrdersPaid() {
	if s == nil || s.ordersPaid == nil {
		return
	}
	s.ordersPaid.Inc()
}

// IncCRMUpload counts one CRM upload attempt with its result label.
func (s *SweepMetrics) IncCRMUpload(result string) {
	if s == nil || s.crmUploads == nil {
		return
	}
	s.crmUploads.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
