// Package metrics holds the Prometheus collectors of the service. Every
// method is safe on a nil *Metrics so that tests and tools can run without
// a registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "patternfactory"

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	TransitionsTotal     *prometheus.CounterVec
	TransitionsRejected  *prometheus.CounterVec
	ClaimConflicts       prometheus.Counter
	DisputeWindowsClosed prometheus.Counter

	OrdersOverdue  *prometheus.GaugeVec
	PublishedTotal *prometheus.CounterVec

	CircuitBreakerState *prometheus.GaugeVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	m.TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order transitions committed, by trigger and destination state",
		},
		[]string{"trigger", "to"},
	)
	m.TransitionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_rejected_total",
			Help:      "Order triggers rejected, by trigger and reason",
		},
		[]string{"trigger", "reason"},
	)
	m.ClaimConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_claim_conflicts_total",
			Help:      "Claims lost to another tailor",
		},
	)
	m.DisputeWindowsClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispute_windows_expired_total",
			Help:      "QC failures that reached TOTAL_FAIL without a dispute",
		},
	)
	m.OrdersOverdue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orders_overdue",
			Help:      "Orders past their SLA maximum, by state",
		},
		[]string{"state"},
	)
	m.PublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transition_events_published_total",
			Help:      "Transition events handed to the broker",
		},
		[]string{"status"},
	)
	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TransitionsTotal,
		m.TransitionsRejected,
		m.ClaimConflicts,
		m.DisputeWindowsClosed,
		m.OrdersOverdue,
		m.PublishedTotal,
		m.CircuitBreakerState,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordTransition(trigger, to string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(trigger, to).Inc()
}

func (m *Metrics) RecordRejection(trigger, reason string) {
	if m == nil {
		return
	}
	m.TransitionsRejected.WithLabelValues(trigger, reason).Inc()
}

func (m *Metrics) RecordClaimConflict() {
	if m == nil {
		return
	}
	m.ClaimConflicts.Inc()
}

func (m *Metrics) RecordDisputeExpired() {
	if m == nil {
		return
	}
	m.DisputeWindowsClosed.Inc()
}

// SetOverdue replaces the overdue gauge with counts per state.
func (m *Metrics) SetOverdue(counts map[string]int) {
	if m == nil {
		return
	}
	m.OrdersOverdue.Reset()
	for state, n := range counts {
		m.OrdersOverdue.WithLabelValues(state).Set(float64(n))
	}
}

func (m *Metrics) RecordPublish(ok bool) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failure"
	}
	m.PublishedTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
