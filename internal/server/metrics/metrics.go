// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jwtkeeper"

// Metrics holds all Prometheus metrics for the jwtkeeper server.
type Metrics struct {
	registry *prometheus.Registry

	// Authentication metrics
	AuthenticationTotal *prometheus.CounterVec
	TokensIssuedTotal   prometheus.Counter
	TokenVerifications  *prometheus.CounterVec

	// Gate metrics
	GateDecisions *prometheus.CounterVec
	RateLimitHits prometheus.Counter

	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestTotal    *prometheus.CounterVec
}

// New creates and registers all metrics on registry. A nil registry gets
// a fresh one with the Go and process collectors.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return &Metrics{
		registry: registry,

		AuthenticationTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "authentication_total",
				Help:      "Total number of username/password authentications",
			},
			[]string{"result", "reason"},
		),

		TokensIssuedTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "tokens_issued_total",
				Help:      "Total number of tokens issued",
			},
		),

		TokenVerifications: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "token_verifications_total",
				Help:      "Total number of bearer token verifications",
			},
			[]string{"result", "reason"},
		),

		GateDecisions: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gate",
				Name:      "decisions_total",
				Help:      "Total number of request gate decisions by rule",
			},
			[]string{"rule", "result"},
		),

		RateLimitHits: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gate",
				Name:      "rate_limit_hits_total",
				Help:      "Total number of login requests rejected by the rate limiter",
			},
		),

		HTTPRequestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Histogram of HTTP request latencies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "code"},
		),

		HTTPRequestTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "code"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordAuthentication(reason string) {
	m.AuthenticationTotal.WithLabelValues(result(reason), reason).Inc()
}

func (m *Metrics) RecordTokenIssued() {
	m.TokensIssuedTotal.Inc()
}

func (m *Metrics) RecordTokenVerification(reason string) {
	m.TokenVerifications.WithLabelValues(result(reason), reason).Inc()
}

func (m *Metrics) RecordGateDecision(rule string, allowed bool) {
	r := "denied"
	if allowed {
		r = "allowed"
	}
	m.GateDecisions.WithLabelValues(rule, r).Inc()
}

func (m *Metrics) RecordRateLimitHit() {
	m.RateLimitHits.Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route, code string, duration time.Duration) {
	m.HTTPRequestTotal.WithLabelValues(method, route, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
}

func result(reason string) string {
	if reason == "ok" {
		return "success"
	}
	return "failure"
}
