package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	// HTTP requests by method, path and status_code
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP latency by method and path
	HTTPRequestDuration *prometheus.HistogramVec

	// Scheduler operations by op (schedule, reschedule, cancel, available, list)
	// and result (ok, conflict, not_found, store_unavailable, query_failure)
	ShowtimeOperationsTotal *prometheus.CounterVec

	// Time spent waiting for a slot lock, by status (acquired, failed)
	SlotLockDuration *prometheus.HistogramVec
}

// New registers the collectors on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ShowtimeOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "showtime_operations_total",
				Help: "Total number of showtime scheduler operations",
			},
			[]string{"op", "result"},
		),
		SlotLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "slot_lock_duration_seconds",
				Help:    "Time spent acquiring a room/time slot lock",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ShowtimeOperationsTotal,
		m.SlotLockDuration,
	)

	return m
}

var defaultMetrics *Metrics

// Init creates the default instance on the default registry.
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

func Get() *Metrics {
	return defaultMetrics
}
