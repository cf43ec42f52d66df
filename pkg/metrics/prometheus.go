package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	rowsAligned *prometheus.CounterVec
	obsDropped  *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		rowsAligned: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_rows_aligned_total",
				Help: "Total aligned rows produced per indicator",
			},
			[]string{"indicator"},
		),
		obsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_observations_dropped_total",
				Help: "Total malformed observations dropped during scheduling",
			},
			[]string{"indicator"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macropulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRowsAligned records aligned rows produced for an indicator.
func (r *Recorder) RecordRowsAligned(indicator string, n int) {
	r.rowsAligned.WithLabelValues(indicator).Add(float64(n))
}

// RecordObservationsDropped records dropped observations for an indicator.
func (r *Recorder) RecordObservationsDropped(indicator string, n int) {
	r.obsDropped.WithLabelValues(indicator).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
