// Package prometheus registers and exposes the service metrics.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every collector the service emits. A single instance is
// created at startup and threaded to the HTTP layer and the dispatcher.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	sweepRuns         *prometheus.CounterVec
	sweepDuration     *prometheus.HistogramVec
	itemsClassified   *prometheus.CounterVec
	notificationsSent *prometheus.CounterVec
	deliveryFailures  *prometheus.CounterVec
}

// New constructs and registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitetrack",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sitetrack",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitetrack",
			Subsystem: "dispatch",
			Name:      "sweep_runs_total",
			Help:      "Dispatcher sweep executions by sweep name and outcome.",
		}, []string{"sweep", "outcome"}),
		sweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sitetrack",
			Subsystem: "dispatch",
			Name:      "sweep_duration_seconds",
			Help:      "Dispatcher sweep wall time by sweep name.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 15, 60},
		}, []string{"sweep"}),
		itemsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitetrack",
			Subsystem: "dispatch",
			Name:      "items_classified_total",
			Help:      "Items examined by sweeps, by item kind and urgency.",
		}, []string{"kind", "urgency"}),
		notificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitetrack",
			Subsystem: "dispatch",
			Name:      "notifications_sent_total",
			Help:      "Notifications delivered, by type and channel.",
		}, []string{"type", "channel"}),
		deliveryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitetrack",
			Subsystem: "dispatch",
			Name:      "delivery_failures_total",
			Help:      "Failed channel deliveries, by type and channel.",
		}, []string{"type", "channel"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.sweepRuns,
		m.sweepDuration,
		m.itemsClassified,
		m.notificationsSent,
		m.deliveryFailures,
	)
	return m
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one completed HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveSweep records one sweep execution.
func (m *Metrics) ObserveSweep(sweep string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.sweepRuns.WithLabelValues(sweep, outcome).Inc()
	m.sweepDuration.WithLabelValues(sweep).Observe(elapsed.Seconds())
}

// CountClassified records a classified item.
func (m *Metrics) CountClassified(kind, urgency string) {
	m.itemsClassified.WithLabelValues(kind, urgency).Inc()
}

// CountSent records a successful delivery.
func (m *Metrics) CountSent(typ, channel string) {
	m.notificationsSent.WithLabelValues(typ, channel).Inc()
}

// CountDeliveryFailure records a failed delivery.
func (m *Metrics) CountDeliveryFailure(typ, channel string) {
	m.deliveryFailures.WithLabelValues(typ, channel).Inc()
}
