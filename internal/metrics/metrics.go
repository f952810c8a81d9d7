// Package metrics collects and exposes Prometheus metrics for the gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by the repository layer and HTTP middleware.
type Recorder interface {
	ObserveQuery(op string, duration time.Duration, err error)
	RecordHTTPStatus(method string, statusCode int)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	queries      *prometheus.CounterVec
	queryLatency *prometheus.HistogramVec
	httpStatus   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_db_operations_total",
			Help: "Database operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		queryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_db_operation_seconds",
			Help:    "Database operation latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_http_responses_total",
			Help: "HTTP responses by method and status code.",
		}, []string{"method", "status_code"}),
	}

	reg.MustRegister(c.queries, c.queryLatency, c.httpStatus)
	return c
}

// ObserveQuery records one database round trip.
func (c *Collector) ObserveQuery(op string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.queries.WithLabelValues(op, outcome).Inc()
	c.queryLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordHTTPStatus records one HTTP response.
func (c *Collector) RecordHTTPStatus(method string, statusCode int) {
	c.httpStatus.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// Noop discards everything. Used when metrics are not wired (tests, tools).
type Noop struct{}

func (Noop) ObserveQuery(string, time.Duration, error) {}

func (Noop) RecordHTTPStatus(string, int) {}

// Handler returns the HTTP handler Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
