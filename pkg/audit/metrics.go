package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biasaudit_runs_total",
		Help: "Audit runs by outcome kind.",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "biasaudit_run_duration_seconds",
		Help:    "Wall time of audit runs.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	})

	modelFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biasaudit_model_failures_total",
		Help: "Model types dropped from a registry after failing to train.",
	}, []string{"model"})

	disparityObserved = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "biasaudit_disparity",
		Help:    "Selection rate disparity reported per audited model.",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	}, []string{"model"})
)
