// Package metrics exposes Prometheus collectors for vidfeed.
// All collectors live on a private registry so tests can create
// independent instances.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vidfeed"

// Upload grant outcomes.
const (
	UploadIssued = "issued"
	UploadDenied = "denied"
	UploadFailed = "failed"
)

// Cache lookup outcomes.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	uploadGrants       *prometheus.CounterVec
	credentialDuration prometheus.Histogram
	timelineCache      *prometheus.CounterVec
	registrations      prometheus.Counter
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploadGrants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_grants_total",
			Help:      "Presigned upload grants requested, by outcome.",
		}, []string{"result"}),
		credentialDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "credential_resolution_seconds",
			Help:      "Time spent resolving signing credentials.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		timelineCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timeline_cache_lookups_total",
			Help:      "Timeline page cache lookups, by result.",
		}, []string{"result"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_registrations_total",
			Help:      "Successful user registrations.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.uploadGrants,
		m.credentialDuration,
		m.timelineCache,
		m.registrations,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// UploadGrant records an upload grant outcome.
func (m *Metrics) UploadGrant(result string) {
	if m == nil {
		return
	}
	m.uploadGrants.WithLabelValues(result).Inc()
}

// CredentialResolution records how long credential resolution took.
func (m *Metrics) CredentialResolution(d time.Duration) {
	if m == nil {
		return
	}
	m.credentialDuration.Observe(d.Seconds())
}

// TimelineCache records a timeline cache lookup.
func (m *Metrics) TimelineCache(result string) {
	if m == nil {
		return
	}
	m.timelineCache.WithLabelValues(result).Inc()
}

// Registration records a successful registration.
func (m *Metrics) Registration() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
