package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	adminRequestsTotal     *prometheus.CounterVec
	adminLatencySeconds    *prometheus.HistogramVec
	adminErrorsTotal       *prometheus.CounterVec
	alertsPublishedTotal   *prometheus.CounterVec
	alertSubscribersActive prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		alertsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_published_total",
			Help: "Total number of SOS alerts published, by region.",
		}, []string{"region"})

		alertSubscribersActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alert_subscribers_active",
			Help: "Number of live alert feed subscribers currently connected.",
		})

		prometheus.MustRegister(adminRequestsTotal, adminLatencySeconds, adminErrorsTotal, alertsPublishedTotal, alertSubscribersActive)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// AlertsPublishedTotal exposes the counter for published SOS alerts.
func AlertsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return alertsPublishedTotal
}

// AlertSubscribersActive exposes the gauge of live feed subscribers.
func AlertSubscribersActive() prometheus.Gauge {
	RegisterMetrics()
	return alertSubscribersActive
}
