package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "expansion_prep_stage_seconds",
		Help:    "Duration of each preparation stage.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"stage"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "expansion_prep_runs_total",
		Help: "Preparation runs by outcome.",
	}, []string{"outcome"})
)
