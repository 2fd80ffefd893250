package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine Prometheus metrics.
var (
	EngineQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "engine_queries_total",
			Help:      "Total number of queries sent to the search engine",
		},
		[]string{"operation", "status"},
	)

	EngineQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdex",
			Name:      "engine_query_duration_seconds",
			Help:      "Search engine query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(EngineQueriesTotal)
	prometheus.MustRegister(EngineQueryDuration)
}

// ObserveEngineQuery records one engine round trip.
func ObserveEngineQuery(operation string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	EngineQueriesTotal.WithLabelValues(operation, status).Inc()
	EngineQueryDuration.WithLabelValues(operation).Observe(seconds)
}
