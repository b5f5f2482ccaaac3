package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analysesTotal  *prometheus.CounterVec
	anomaliesTotal *prometheus.CounterVec
	newsErrsTotal  *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		analysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_analyses_total",
				Help: "Total number of per-instrument analysis runs",
			},
			[]string{"symbol", "result"},
		),
		anomaliesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_anomalies_total",
				Help: "Total number of flagged price anomalies",
			},
			[]string{"symbol"},
		),
		newsErrsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_news_errors_total",
				Help: "Total number of news source failures",
			},
			[]string{"source"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAnalysis records the outcome of one instrument analysis.
func (r *Recorder) RecordAnalysis(symbol string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.analysesTotal.WithLabelValues(symbol, result).Inc()
}

// RecordAnomaly records a flagged price anomaly.
func (r *Recorder) RecordAnomaly(symbol string) {
	r.anomaliesTotal.WithLabelValues(symbol).Inc()
}

// RecordNewsError records a failed news source lookup.
func (r *Recorder) RecordNewsError(source string) {
	r.newsErrsTotal.WithLabelValues(source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
