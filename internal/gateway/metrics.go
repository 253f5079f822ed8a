package gateway

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics tracks assistant-level counters. Atomics back the JSON
// status snapshot; the same signals are exported to the Prometheus
// registry for scraping via /metrics.
type Metrics struct {
	exchanges    atomic.Int64
	errors       atomic.Int64
	compactions  atomic.Int64
	totalTokens  atomic.Int64
	tokensSaved  atomic.Int64
	totalLatency atomic.Int64 // nanoseconds

	registry        *prometheus.Registry
	promExchanges   prometheus.Counter
	promErrors      prometheus.Counter
	promCompactions *prometheus.CounterVec
	promTokens      prometheus.Counter
	promSaved       prometheus.Counter
	promLatency     prometheus.Histogram
}

// NewMetrics creates a Metrics with its own Prometheus registry,
// including the standard Go and process collectors so the /metrics
// endpoint doubles as a host/process monitor.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		promExchanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recall_exchanges_total",
			Help: "Completed user/assistant exchanges.",
		}),
		promErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recall_completion_errors_total",
			Help: "Completion calls that failed at the transport level.",
		}),
		promCompactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recall_compactions_total",
			Help: "History compactions, by summary outcome.",
		}, []string{"outcome"}),
		promTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recall_tokens_total",
			Help: "Service-reported tokens consumed.",
		}),
		promSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recall_tokens_saved_total",
			Help: "Estimated tokens removed from context by compaction.",
		}),
		promLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recall_exchange_duration_seconds",
			Help:    "Wall-clock duration of one exchange.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.promExchanges, m.promErrors, m.promCompactions,
		m.promTokens, m.promSaved, m.promLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the Prometheus registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordExchange records a successful exchange.
func (m *Metrics) RecordExchange(totalTokens int, latency time.Duration) {
	m.exchanges.Add(1)
	m.totalTokens.Add(int64(totalTokens))
	m.totalLatency.Add(int64(latency))

	m.promExchanges.Inc()
	m.promTokens.Add(float64(totalTokens))
	m.promLatency.Observe(latency.Seconds())
}

// RecordCompaction records a compaction event.
func (m *Metrics) RecordCompaction(tokensSaved int, failed bool) {
	m.compactions.Add(1)
	m.tokensSaved.Add(int64(tokensSaved))

	outcome := "ok"
	if failed {
		outcome = "error_summary"
	}
	m.promCompactions.WithLabelValues(outcome).Inc()
	m.promSaved.Add(float64(tokensSaved))
}

// RecordError records a failed completion call.
func (m *Metrics) RecordError() {
	m.errors.Add(1)
	m.promErrors.Inc()
}

// Snapshot returns a consistent point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	exchanges := m.exchanges.Load()
	snap := MetricsSnapshot{
		Exchanges:   exchanges,
		Errors:      m.errors.Load(),
		Compactions: m.compactions.Load(),
		TotalTokens: m.totalTokens.Load(),
		TokensSaved: m.tokensSaved.Load(),
	}
	if exchanges > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / exchanges)
	}
	return snap
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Exchanges   int64         `json:"exchanges"`
	Errors      int64         `json:"errors"`
	Compactions int64         `json:"compactions"`
	TotalTokens int64         `json:"total_tokens"`
	TokensSaved int64         `json:"tokens_saved"`
	AvgLatency  time.Duration `json:"avg_latency_ns"`
}
