package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	CatalogRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmapi",
			Name:      "catalog_refresh_total",
			Help:      "Catalog snapshot refreshes by outcome",
		},
		[]string{"status"},
	)

	CatalogItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "llmapi",
			Name:      "catalog_items",
			Help:      "Number of items in the current catalog snapshot",
		},
		[]string{"collection"},
	)

	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmapi",
			Name:      "upstream_requests_total",
			Help:      "Requests to external sources by outcome",
		},
		[]string{"source", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llmapi",
			Name:      "upstream_request_duration_seconds",
			Help:      "External source request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	IntentDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmapi",
			Name:      "intent_decisions_total",
			Help:      "Intent classifications by mode and path",
		},
		[]string{"mode", "path"},
	)

	RerankTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmapi",
			Name:      "rerank_total",
			Help:      "Semantic rerank passes by outcome",
		},
		[]string{"result"}, // "applied" / "skipped" / "failed"
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmapi",
			Name:      "generation_requests_total",
			Help:      "Long-form generation requests by outcome",
		},
		[]string{"model", "status"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus query pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(CatalogRefreshTotal)
	prometheus.MustRegister(CatalogItems)
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(IntentDecisionsTotal)
	prometheus.MustRegister(RerankTotal)
	prometheus.MustRegister(GenerationRequestsTotal)
	pipelineMetricsRegistered = true
}
