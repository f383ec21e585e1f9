package health

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for ingestion counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics publishes the simulator snapshot and ingestion counters on its own
// registry, so several engines can coexist in one process.
type Metrics struct {
	registry   *prometheus.Registry
	ingestions *prometheus.CounterVec
	queries    prometheus.Counter
	nodes      prometheus.Gauge
	vectors    prometheus.Gauge
}

// NewMetrics registers gauges reading sim and returns the collector set.
func NewMetrics(namespace string, sim *Simulator) *Metrics {
	registry := prometheus.NewRegistry()

	gauge := func(name, help string, read func() float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, read)
	}

	ingestions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestions_total",
			Help:      "Total number of finished ingestions by outcome",
		},
		[]string{"outcome"},
	)
	queries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_queries_total",
		Help:      "Total number of answered agent queries",
	})
	nodes := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "graph_nodes",
		Help:      "Number of nodes in the knowledge graph",
	})
	vectors := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "vector_points",
		Help:      "Number of points in the vector store",
	})

	registry.MustRegister(
		gauge("consistency_percent", "Simulated consistency percentage", func() float64 {
			return sim.Snapshot().Consistency
		}),
		gauge("latency_milliseconds", "Simulated sync latency", func() float64 {
			return float64(sim.Snapshot().LatencyMs)
		}),
		gauge("replication_factor", "Simulated replication factor", func() float64 {
			return float64(sim.Snapshot().ReplicationFactor)
		}),
		gauge("storage_megabytes", "Simulated storage footprint", func() float64 {
			return sim.Snapshot().StorageMB
		}),
		gauge("buffer_percent", "Simulated memory buffer fill", func() float64 {
			return float64(sim.Snapshot().BufferPercent)
		}),
		gauge("ingest_busy", "1 while an ingestion is in flight", func() float64 {
			if sim.Busy() {
				return 1
			}
			return 0
		}),
		ingestions,
		queries,
		nodes,
		vectors,
	)

	ingestions.WithLabelValues(OutcomeSuccess)
	ingestions.WithLabelValues(OutcomeFailure)

	return &Metrics{
		registry:   registry,
		ingestions: ingestions,
		queries:    queries,
		nodes:      nodes,
		vectors:    vectors,
	}
}

// IngestStarted is part of the ingestion monitor contract; nothing to count.
func (m *Metrics) IngestStarted() {}

// IngestFinished counts one ingestion by outcome.
func (m *Metrics) IngestFinished(err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.ingestions.WithLabelValues(outcome).Inc()
}

// StoreChanged records the store sizes.
func (m *Metrics) StoreChanged(nodes, vectors int) {
	m.nodes.Set(float64(nodes))
	m.vectors.Set(float64(vectors))
}

// QueryStarted is part of the agent monitor contract; nothing to count.
func (m *Metrics) QueryStarted(string) {}

// QueryFinished counts one answered agent query.
func (m *Metrics) QueryFinished(string) {
	m.queries.Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
