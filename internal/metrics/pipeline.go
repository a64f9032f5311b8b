package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Routing pipeline metrics.
var (
	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Chat turns by classified strategy and outcome",
		},
		[]string{"strategy", "outcome"}, // outcome: ok / failed
	)

	FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Locally recovered degradations",
		},
		[]string{"kind"},
	)

	StepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of each pipeline step",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"step"},
	)

	RetrievedItems = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieved_items",
			Help:      "Number of items returned by retrieval",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
		[]string{"route"},
	)

	IngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_products_total",
			Help:      "Products processed by embedding ingestion",
		},
		[]string{"status"}, // embedded / failed
	)
)

var pipelineOnce sync.Once

// RegisterPipelineMetrics registers pipeline metrics with the default registry. Idempotent.
func RegisterPipelineMetrics() {
	pipelineOnce.Do(func() {
		prometheus.MustRegister(TurnsTotal, FallbacksTotal, StepDuration, RetrievedItems, IngestedTotal)
	})
}
