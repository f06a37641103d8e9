package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	opDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quickroute_op_duration_seconds",
			Help:    "Duration of timed internal operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"op"},
	)

	// PlanRuns counts finished planning runs by outcome (succeeded, failed, superseded).
	PlanRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickroute_plan_runs_total",
			Help: "Total number of planning runs by outcome",
		},
		[]string{"outcome"},
	)

	// PlanFailures counts failed runs by the stage that failed.
	PlanFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickroute_plan_failures_total",
			Help: "Total number of failed planning runs by stage",
		},
		[]string{"stage"},
	)

	ETALookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickroute_eta_cache_lookups_total",
			Help: "ETA cache lookups by result (hit, miss, shared, abandoned)",
		},
		[]string{"result"},
	)

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickroute_provider_requests_total",
			Help: "Outbound geocoding and directions requests",
		},
		[]string{"provider", "op", "status"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickroute_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quickroute_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
