// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ipr"

// Metrics holds the service collectors on a private registry. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	registry *prometheus.Registry

	workflowTransitions *prometheus.CounterVec
	allocatorAttempts   *prometheus.CounterVec
	notifications       *prometheus.CounterVec
	requestTotal        *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	liveSubscriptions   prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	workflowTransitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_transitions_total",
			Help:      "Committed application status transitions.",
		},
		[]string{"transition"},
	)
	allocatorAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocator_attempts_total",
			Help:      "Application number allocation attempts by outcome.",
		},
		[]string{"outcome"},
	)
	notifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification writes by outcome.",
		},
		[]string{"outcome"},
	)
	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	liveSubscriptions := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscriptions",
			Help:      "Open live query subscriptions.",
		},
	)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		workflowTransitions,
		allocatorAttempts,
		notifications,
		requestTotal,
		requestDuration,
		liveSubscriptions,
	)

	return &Metrics{
		registry:            registry,
		workflowTransitions: workflowTransitions,
		allocatorAttempts:   allocatorAttempts,
		notifications:       notifications,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		liveSubscriptions:   liveSubscriptions,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// LiveSubscriptions is the gauge handed to the live query hub; nil when metrics are off.
func (m *Metrics) LiveSubscriptions() prometheus.Gauge {
	if m == nil {
		return nil
	}
	return m.liveSubscriptions
}

func (m *Metrics) Transition(name string) {
	if m == nil {
		return
	}
	m.workflowTransitions.WithLabelValues(name).Inc()
}

// AllocatorAttempt records one counter transaction; outcome is committed, conflict or error.
func (m *Metrics) AllocatorAttempt(outcome string) {
	if m == nil {
		return
	}
	m.allocatorAttempts.WithLabelValues(outcome).Inc()
}

// Notification records one notification write; outcome is delivered or failed.
func (m *Metrics) Notification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
