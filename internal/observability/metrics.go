package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// KVErrors counts substrate errors by operation type.
	KVErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classwall_kv_error_total",
		Help: "Total number of key-value substrate errors by operation type",
	}, []string{"operation"})

	// KVLatency records substrate round-trip latency by operation.
	KVLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "classwall_kv_latency_seconds",
		Help:    "Key-value substrate operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// StoreOps counts store operations by collection, operation and outcome.
	StoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classwall_store_operations_total",
		Help: "Total store operations by collection, operation and outcome",
	}, []string{"collection", "operation", "outcome"})

	// ModerationActions counts moderation operations by action.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classwall_moderation_actions_total",
		Help: "Total moderation actions by action type",
	}, []string{"action"})
)

// TrackKVOp returns a function recording substrate latency when called
// (e.g. defer).
func TrackKVOp(operation string) func() {
	start := time.Now()
	return func() {
		KVLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// RecordStoreOp increments the store-operation counter.
func RecordStoreOp(collection, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "denied"
	}
	StoreOps.WithLabelValues(collection, operation, outcome).Inc()
}
