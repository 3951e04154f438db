// Package metrics exposes prometheus instrumentation for routing and
// responder calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry so tests can create
// instances freely without double-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	responderDuration *prometheus.HistogramVec
	responderTotal    *prometheus.CounterVec
	decisionTotal     *prometheus.CounterVec
	requestDuration   prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		responderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "supportflow",
			Name:      "responder_duration_seconds",
			Help:      "Wall time of individual responder calls.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"responder"}),
		responderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supportflow",
			Name:      "responder_calls_total",
			Help:      "Responder calls by outcome.",
		}, []string{"responder", "outcome"}),
		decisionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supportflow",
			Name:      "routing_decisions_total",
			Help:      "Routing decisions by execution shape.",
		}, []string{"shape"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "supportflow",
			Name:      "request_duration_seconds",
			Help:      "End-to-end request handling time.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}

	m.registry.MustRegister(
		m.responderDuration,
		m.responderTotal,
		m.decisionTotal,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveResponder records one responder call.
func (m *Metrics) ObserveResponder(responder string, d time.Duration, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.responderDuration.WithLabelValues(responder).Observe(d.Seconds())
	m.responderTotal.WithLabelValues(responder, outcome).Inc()
}

// CountDecision records the execution shape chosen for a request.
func (m *Metrics) CountDecision(shape string) {
	m.decisionTotal.WithLabelValues(shape).Inc()
}

// ObserveRequest records one end-to-end request.
func (m *Metrics) ObserveRequest(d time.Duration) {
	m.requestDuration.Observe(d.Seconds())
}
