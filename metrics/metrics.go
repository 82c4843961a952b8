// Package metrics exposes Prometheus collectors for the signing server.
//
// A nil *Metrics is valid and records nothing, so callers can pass it through
// unconditionally when metrics are disabled.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "signet"

// Metrics owns a private registry with HTTP and signing collectors.
type Metrics struct {
	reg         *prometheus.Registry
	inflight    prometheus.Gauge
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	signatures  *prometheus.CounterVec
	signLatency *prometheus.HistogramVec
}

// New creates a Metrics instance with a fresh registry and registers collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	inflight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of inflight HTTP requests.",
	})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests processed, partitioned by route, status code and method.",
	}, []string{"route", "code", "method"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Histogram of latencies for HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "code", "method"})
	signatures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sign",
		Name:      "requests_total",
		Help:      "Total number of signing requests by backend and outcome.",
	}, []string{"backend", "outcome"})
	signLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "sign",
		Name:      "duration_seconds",
		Help:      "Histogram of signing durations in seconds, including credential loading.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"backend"})

	reg.MustRegister(
		inflight,
		requests,
		latency,
		signatures,
		signLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		reg:         reg,
		inflight:    inflight,
		requests:    requests,
		latency:     latency,
		signatures:  signatures,
		signLatency: signLatency,
	}
}

// Handler returns an http.Handler that serves the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveSign records the outcome of one signing request. outcome is "ok" or
// the error code returned to the client.
func (m *Metrics) ObserveSign(backend, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.signatures.WithLabelValues(backend, outcome).Inc()
	m.signLatency.WithLabelValues(backend).Observe(dur.Seconds())
}

// statusRecorder captures the HTTP status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware wraps an http.Handler to collect HTTP metrics. The route label
// uses the chi route pattern so that path parameters do not inflate
// cardinality; unmatched requests are labelled "unmatched".
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inflight.Inc()
		defer m.inflight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		code := strconv.Itoa(rec.status)
		m.requests.WithLabelValues(route, code, r.Method).Inc()
		m.latency.WithLabelValues(route, code, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Registry returns the underlying Prometheus registry for advanced usage.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}
