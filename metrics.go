package timekit

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector records Prometheus metrics for API calls. A nil
// collector records nothing.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
	errorsTotal      *prometheus.CounterVec
}

// NewMetricsCollector registers the collector's metrics on registerer.
func NewMetricsCollector(registerer prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "timekit_requests_total",
				Help: "Total number of Timekit API requests that received a response",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		requestDuration: promauto.With(registerer).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "timekit_request_duration_seconds",
				Help:    "Duration of Timekit API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "method"},
		),
		requestsInFlight: promauto.With(registerer).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "timekit_requests_in_flight",
				Help: "Number of Timekit API requests currently in flight",
			},
			[]string{"endpoint", "method"},
		),
		errorsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "timekit_request_errors_total",
				Help: "Total number of failed Timekit API calls by error kind",
			},
			[]string{"endpoint", "kind"},
		),
	}
}

func (m *MetricsCollector) requestStarted(endpoint, method string) {
	if m == nil {
		return
	}
	m.requestsInFlight.WithLabelValues(endpoint, method).Inc()
}

func (m *MetricsCollector) requestFinished(endpoint, method string) {
	if m == nil {
		return
	}
	m.requestsInFlight.WithLabelValues(endpoint, method).Dec()
}

func (m *MetricsCollector) recordRequest(endpoint, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (m *MetricsCollector) recordError(endpoint string, err error) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(endpoint, errorKindLabel(err)).Inc()
}
