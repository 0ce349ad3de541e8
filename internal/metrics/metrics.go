// Package metrics exposes service counters over a custom registry so
// handler tests can run side by side without duplicate registration.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	seedReloads       prometheus.Counter
	sessionsActive    prometheus.Gauge
	ratingsTotal      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		seedReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seed_reloads_total",
			Help: "Total dataset reloads from the seed file.",
		}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "view_sessions_active",
			Help: "Currently live view-state sessions.",
		}),
		ratingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_ratings_total",
			Help: "Total ratings recorded, by kind.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.seedReloads,
		m.sessionsActive,
		m.ratingsTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SeedReloaded counts one dataset reload.
func (m *Metrics) SeedReloaded() { m.seedReloads.Inc() }

// SetActiveSessions records the live session count.
func (m *Metrics) SetActiveSessions(n int) { m.sessionsActive.Set(float64(n)) }

// RatingRecorded counts one like or dislike.
func (m *Metrics) RatingRecorded(like bool) {
	kind := "dislike"
	if like {
		kind = "like"
	}
	m.ratingsTotal.WithLabelValues(kind).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler instruments next with request count and duration by route.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Seconds()
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(duration)
	})
}
