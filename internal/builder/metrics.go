package builder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_request_builds_total",
		Help: "Total number of order request builds started.",
	})
	buildDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_request_build_duration_seconds",
		Help:    "Time spent building an order request.",
		Buckets: prometheus.DefBuckets,
	})
	buildFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_request_build_failures_total",
		Help: "Order request builds aborted, by failing section builder.",
	}, []string{"builder"})
)

// GetBuildRequestsTotal exposes the build counter for tests.
func GetBuildRequestsTotal() prometheus.Counter { return buildRequestsTotal }

// GetBuildDurationSeconds exposes the build duration histogram for tests.
func GetBuildDurationSeconds() prometheus.Histogram { return buildDurationSeconds }

// GetBuildFailuresTotal exposes the failure counter for tests.
func GetBuildFailuresTotal() *prometheus.CounterVec { return buildFailuresTotal }
