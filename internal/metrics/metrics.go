package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nightlies_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nightlies_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nightlies_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Store metrics
	StoreLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nightlies_store_lookups_total",
			Help: "Total number of key-value store lookups",
		},
		[]string{"kind", "result"},
	)

	CurrentMissingTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nightlies_current_missing_total",
			Help: "Requests that found no CURRENT pointer in the store",
		},
	)

	ValueLogGCRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nightlies_value_log_gc_runs_total",
			Help: "Badger value log GC passes by outcome",
		},
		[]string{"result"},
	)
)

// Lookup results
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)
