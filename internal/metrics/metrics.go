// Package metrics defines the Prometheus instruments exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus instruments. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ReviewsUpserted  *prometheus.CounterVec
	BooksAdded       prometheus.Counter
	UsersRegistered  prometheus.Counter
	ExternalSearches *prometheus.CounterVec
	ExternalLatency  prometheus.Histogram
	HTTPRequests     *prometheus.CounterVec
	HTTPLatency      *prometheus.HistogramVec
}

// New creates the instruments on a fresh registry that also carries Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	f := promauto.With(reg)
	return &Metrics{
		registry: reg,

		ReviewsUpserted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfnotes_reviews_upserted_total",
			Help: "Review submissions by outcome",
		}, []string{"result"}), // result: "created", "updated"

		BooksAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "shelfnotes_books_added_total",
			Help: "Books inserted into the catalog",
		}),

		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "shelfnotes_users_registered_total",
			Help: "Accounts created",
		}),

		ExternalSearches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfnotes_external_search_requests_total",
			Help: "External book searches by outcome",
		}, []string{"outcome"}), // outcome: "ok", "cached", "error"

		ExternalLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "shelfnotes_external_search_duration_seconds",
			Help:    "Duration of uncached external book searches",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfnotes_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shelfnotes_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ReviewUpserted records a review write.
func (m *Metrics) ReviewUpserted(created bool) {
	if m == nil {
		return
	}
	if created {
		m.ReviewsUpserted.WithLabelValues("created").Inc()
		return
	}
	m.ReviewsUpserted.WithLabelValues("updated").Inc()
}

// BookAdded records a catalog insert.
func (m *Metrics) BookAdded() {
	if m != nil {
		m.BooksAdded.Inc()
	}
}

// UserRegistered records a new account.
func (m *Metrics) UserRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

// ExternalSearch records an external search outcome and, for upstream calls, its duration.
func (m *Metrics) ExternalSearch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ExternalSearches.WithLabelValues(outcome).Inc()
	if outcome != "cached" {
		m.ExternalLatency.Observe(d.Seconds())
	}
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
