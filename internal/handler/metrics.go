package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_attempts_total",
		Help: "Pay and finalize calls, by gateway and outcome.",
	}, []string{"gateway", "outcome"})
	payDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_pay_duration_seconds",
		Help:    "Time spent in Pay, including the MultiSafepay call.",
		Buckets: prometheus.DefBuckets,
	})
	cancelFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_pre_transaction_cancel_failures_total",
		Help: "Pre-transaction cancellations MultiSafepay did not accept.",
	})
)

// GetAttemptsTotal exposes the attempt counter for tests.
func GetAttemptsTotal() *prometheus.CounterVec { return attemptsTotal }

// GetPayDurationSeconds exposes the pay duration histogram for tests.
func GetPayDurationSeconds() prometheus.Histogram { return payDurationSeconds }

// GetCancelFailuresTotal exposes the cancel failure counter for tests.
func GetCancelFailuresTotal() prometheus.Counter { return cancelFailuresTotal }
