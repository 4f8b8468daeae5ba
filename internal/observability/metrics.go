package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StoreOperations counts in-memory collection operations by outcome.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_store_operations_total",
		Help: "Total number of in-memory collection operations",
	}, []string{"collection", "operation", "outcome"})

	// SimulatedLatency records the artificial delay actually waited per collection.
	SimulatedLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_simulated_latency_seconds",
		Help:    "Simulated service latency waited before touching a collection",
		Buckets: []float64{0.001, 0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 1},
	}, []string{"collection"})

	// EnrichmentMisses counts foreign keys that could not be resolved.
	EnrichmentMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_enrichment_misses_total",
		Help: "Total number of related records that failed to resolve",
	}, []string{"relation"})

	// OptimisticRollbacks counts compensations applied after a failed optimistic command.
	OptimisticRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_optimistic_rollbacks_total",
		Help: "Total number of optimistic updates rolled back",
	}, []string{"command"})

	// PageLoads counts page view state transitions.
	PageLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_page_loads_total",
		Help: "Page view loads by page and terminal phase",
	}, []string{"page", "phase"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts events pushed to WebSocket clients by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// StoreMetrics records operation outcomes for one collection.
type StoreMetrics struct {
	collection string
}

// NewStoreMetrics returns a StoreMetrics bound to collection.
func NewStoreMetrics(collection string) *StoreMetrics {
	return &StoreMetrics{collection: collection}
}

// Record increments the operation counter with an ok/error outcome.
func (m *StoreMetrics) Record(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	StoreOperations.WithLabelValues(m.collection, operation, outcome).Inc()
}

// ObserveLatency records how long the simulated delay lasted.
func (m *StoreMetrics) ObserveLatency(d time.Duration) {
	SimulatedLatency.WithLabelValues(m.collection).Observe(d.Seconds())
}
