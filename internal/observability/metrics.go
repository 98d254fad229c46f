// Package observability collects Prometheus metrics for the gateway.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates the gateway's Prometheus collectors.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	guardDecisions  *prometheus.CounterVec
	calendarFetches *prometheus.CounterVec
	calendarDeduped *prometheus.CounterVec
}

// NewMetrics initializes the registry and base collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_guard_decisions_total",
		Help: "Scope guard outcomes by route.",
	}, []string{"outcome", "route"})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_calendar_fetches_total",
		Help: "Calendar upstream fetches by trigger.",
	}, []string{"trigger"})
	deduped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_calendar_deduped_total",
		Help: "Calendar notifications skipped by the dedup baseline.",
	}, []string{"trigger"})
	registry.MustRegister(requests, duration, decisions, fetches, deduped)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		guardDecisions:  decisions,
		calendarFetches: fetches,
		calendarDeduped: deduped,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// GuardDecision counts a scope guard outcome.
func (m *Metrics) GuardDecision(outcome, route string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(outcome, route).Inc()
}

// CalendarFetch counts an issued upstream calendar fetch.
func (m *Metrics) CalendarFetch(trigger string) {
	if m == nil {
		return
	}
	m.calendarFetches.WithLabelValues(trigger).Inc()
}

// CalendarDeduped counts a change notification absorbed by the baseline.
func (m *Metrics) CalendarDeduped(trigger string) {
	if m == nil {
		return
	}
	m.calendarDeduped.WithLabelValues(trigger).Inc()
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
