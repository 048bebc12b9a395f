package api

import (
	"io"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const metricsPrefix = "commonspack_"

var (
	requestsTotal   *prometheus.CounterVec
	retriesTotal    prometheus.Counter
	failuresTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	metricsOnce       sync.Once
	metricsRegistered bool
)

// RequestMetrics records request outcomes. The zero value and nil are both
// usable; nothing is recorded until InitMetrics has run.
type RequestMetrics struct{}

// NewRequestMetrics creates a new RequestMetrics instance.
// Metrics are lazily registered on first use.
func NewRequestMetrics() *RequestMetrics {
	InitMetrics()
	return &RequestMetrics{}
}

// InitMetrics registers the request metrics with the default registry.
// Safe to call more than once.
func InitMetrics() {
	metricsOnce.Do(func() {
		requestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commonspack_requests_total",
				Help: "Total number of requests by method and outcome",
			},
			[]string{"method", "outcome"},
		)

		retriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "commonspack_request_retries_total",
				Help: "Total number of requests resubmitted after a lost connection",
			},
		)

		failuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commonspack_request_failures_total",
				Help: "Total number of failed requests by error kind",
			},
			[]string{"kind"},
		)

		requestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commonspack_request_duration_seconds",
				Help:    "Duration of requests in seconds, retries included",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		)

		metricsRegistered = true
	})
}

// RecordRequest records one finished call
func (m *RequestMetrics) RecordRequest(method, outcome string, durationSeconds float64) {
	if m == nil || !metricsRegistered {
		return
	}
	requestsTotal.WithLabelValues(method, outcome).Inc()
	requestDuration.WithLabelValues(method).Observe(durationSeconds)
}

// RecordRetry records a resubmission
func (m *RequestMetrics) RecordRetry() {
	if m == nil || !metricsRegistered {
		return
	}
	retriesTotal.Inc()
}

// RecordFailure records a failed call by error kind
func (m *RequestMetrics) RecordFailure(kind string) {
	if m == nil || !metricsRegistered {
		return
	}
	failuresTotal.WithLabelValues(kind).Inc()
}

// GetRequestsTotal returns the request counter for testing.
func GetRequestsTotal() *prometheus.CounterVec {
	return requestsTotal
}

// GetRetriesTotal returns the retry counter for testing.
func GetRetriesTotal() prometheus.Counter {
	return retriesTotal
}

// GetFailuresTotal returns the failure counter for testing.
func GetFailuresTotal() *prometheus.CounterVec {
	return failuresTotal
}

// IsMetricsRegistered returns whether metrics have been initialized.
func IsMetricsRegistered() bool {
	return metricsRegistered
}

// WriteMetrics writes the request metrics in the Prometheus text format.
// Families from other packages sharing the default registry are skipped.
func WriteMetrics(w io.Writer) error {
	return writeMetrics(w, prometheus.DefaultGatherer)
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), metricsPrefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
