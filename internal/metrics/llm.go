package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LLM completion metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM completion duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)
)

var llmOnce sync.Once

// RegisterLLMMetrics registers LLM metrics with the default registry. Idempotent.
func RegisterLLMMetrics() {
	llmOnce.Do(func() {
		prometheus.MustRegister(LLMRequestsTotal, LLMRequestDuration)
	})
}
