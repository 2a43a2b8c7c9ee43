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

// Read call outcomes
const (
	StatusOK       = "ok"
	StatusRejected = "rejected" // reverted or invalid input, reported to the caller
	StatusFailed   = "failed"
)

// Recorder is what the read path needs from metrics
type Recorder interface {
	ObserveReadCall(status string, elapsed time.Duration)
	IncCache(hit bool)
}

// Metrics holds the explorer collectors
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	readCalls        *prometheus.CounterVec
	readCallDuration prometheus.Histogram
	cacheLookups     *prometheus.CounterVec
}

// New registers the collectors on a fresh registry
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewWithRegistry(namespace, reg, reg)
}

// NewWithRegistry registers the collectors on reg
func NewWithRegistry(namespace string, reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	return &Metrics{
		gatherer: gatherer,

		httpRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			}, []string{"method", "route", "status"}),

		httpDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			}, []string{"method", "route"}),

		readCalls: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "read",
				Name:      "calls_total",
				Help:      "Read-method calls by outcome",
			}, []string{"status"}),

		readCallDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "read",
				Name:      "call_duration_seconds",
				Help:      "Duration of eth_call round trips",
				Buckets:   prometheus.DefBuckets,
			}),

		cacheLookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "read",
				Name:      "cache_lookups_total",
				Help:      "Historical read cache lookups",
			}, []string{"result"}),
	}
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveReadCall(status string, elapsed time.Duration) {
	m.readCalls.WithLabelValues(status).Inc()
	m.readCallDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) IncCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything
type Nop struct{}

func (Nop) ObserveReadCall(string, time.Duration) {}
func (Nop) IncCache(bool)                         {}
