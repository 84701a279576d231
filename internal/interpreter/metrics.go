package interpreter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meddsl_interpreter_executions_total",
		Help: "Total number of RuleSet executions, by terminal outcome",
	}, []string{"outcome"})

	safetyStopsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meddsl_interpreter_safety_stops_total",
		Help: "Total number of safety stops emitted, by tag",
	}, []string{"tag"})

	nodesVisitedHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "meddsl_interpreter_nodes_visited",
		Help:    "Number of nodes traversed per execution before completion or safety stop",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})
)
