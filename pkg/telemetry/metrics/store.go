package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bitmark-hq/compiler/pkg/config"
)

// StoreMetrics tracks the compiled-document store.
//
// Metrics:
//   - bitmark_compiler_store_operations_total: store calls by operation and result
//   - bitmark_compiler_store_operation_duration_seconds: store call duration
//   - bitmark_compiler_store_pruned_records_total: records removed by retention
//   - bitmark_compiler_store_prune_runs_total: retention runs by result
type StoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	prunedTotal       prometheus.Counter
	pruneRuns         *prometheus.CounterVec
}

// NewStoreMetrics creates and registers store metrics with registry.
func NewStoreMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StoreMetrics {
	sm := &StoreMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_operations_total",
				Help:      "Total number of store operations",
			},
			[]string{"operation", "result"},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of store operations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to 1.6s
			},
			[]string{"operation"},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_pruned_records_total",
				Help:      "Total number of compile records removed by retention",
			},
		),

		pruneRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_prune_runs_total",
				Help:      "Total number of retention runs",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		sm.operationsTotal,
		sm.operationDuration,
		sm.prunedTotal,
		sm.pruneRuns,
	)

	return sm
}

// RecordOperation records one store call.
func (sm *StoreMetrics) RecordOperation(op string, duration time.Duration, err error) {
	sm.operationsTotal.WithLabelValues(op, result(err)).Inc()
	sm.operationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordPrune records one retention run.
func (sm *StoreMetrics) RecordPrune(removed int64, err error) {
	sm.pruneRuns.WithLabelValues(result(err)).Inc()
	if removed > 0 {
		sm.prunedTotal.Add(float64(removed))
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
