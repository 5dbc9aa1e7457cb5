package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	journalsPosted           prometheus.Counter
	reconciliationsCompleted prometheus.Counter
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quarters_http_requests_total",
		Help: "HTTP requests partitioned by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quarters_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	journalsPosted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quarters_journals_posted_total",
		Help: "Journals transitioned from draft to posted.",
	})
	reconciliationsCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quarters_reconciliations_completed_total",
		Help: "Reconciliations transitioned from draft to completed.",
	})
	registry.MustRegister(requests, duration, journalsPosted, reconciliationsCompleted)
	return &Metrics{
		registry:                 registry,
		handler:                  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:            requests,
		requestDuration:          duration,
		journalsPosted:           journalsPosted,
		reconciliationsCompleted: reconciliationsCompleted,
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

// JournalPosted increments the posted-journal counter.
func (m *Metrics) JournalPosted() {
	if m == nil {
		return
	}
	m.journalsPosted.Inc()
}

// ReconciliationCompleted increments the completed-reconciliation counter.
func (m *Metrics) ReconciliationCompleted() {
	if m == nil {
		return
	}
	m.reconciliationsCompleted.Inc()
}

// Registerer exposes the registry for custom metric registration.
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
