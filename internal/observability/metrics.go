package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	apiRequestsTotal     *prometheus.CounterVec
	apiLatencySeconds    *prometheus.HistogramVec
	apiErrorsTotal       *prometheus.CounterVec
	auditRecordedTotal   *prometheus.CounterVec
	auditDroppedTotal    prometheus.Counter
	auditQueueDepthGauge prometheus.Gauge
	feedConnectionsGauge prometheus.Gauge
	feedDeliveredTotal   prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the API surface
// and the audit recording pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		auditRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_entries_recorded_total",
			Help: "Total number of audit entries durably written.",
		}, []string{"category"})

		auditDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_entries_dropped_total",
			Help: "Audit entries dropped because the async queue was full.",
		})

		auditQueueDepthGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "audit_queue_depth",
			Help: "Number of audit recording tasks waiting in the async queue.",
		})

		feedConnectionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feed_connections",
			Help: "Active websocket subscribers on the live activity feed.",
		})

		feedDeliveredTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feed_events_delivered_total",
			Help: "Audit entries pushed out over the live activity feed.",
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			auditRecordedTotal, auditDroppedTotal, auditQueueDepthGauge,
			feedConnectionsGauge, feedDeliveredTotal,
		)
	})
}

// APIRequests exposes the counter for served requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// AuditRecorded exposes the counter for persisted audit entries.
func AuditRecorded() *prometheus.CounterVec {
	RegisterMetrics()
	return auditRecordedTotal
}

// AuditDropped exposes the counter for entries lost to backpressure.
func AuditDropped() prometheus.Counter {
	RegisterMetrics()
	return auditDroppedTotal
}

// AuditQueueDepth exposes the gauge tracking async queue occupancy.
func AuditQueueDepth() prometheus.Gauge {
	RegisterMetrics()
	return auditQueueDepthGauge
}

// FeedConnections exposes the gauge of connected feed subscribers.
func FeedConnections() prometheus.Gauge {
	RegisterMetrics()
	return feedConnectionsGauge
}

// FeedDelivered exposes the counter for feed events pushed to subscribers.
func FeedDelivered() prometheus.Counter {
	RegisterMetrics()
	return feedDeliveredTotal
}
