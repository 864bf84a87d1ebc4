package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bitmark-hq/compiler/pkg/config"
)

// CompileMetrics tracks compilations.
//
// Metrics:
//   - bitmark_compiler_compilations_total: compilations by status
//   - bitmark_compiler_compile_duration_seconds: compile duration
//   - bitmark_compiler_document_bits: bits per compiled document
//   - bitmark_compiler_bits_total: compiled bits by bit type
//   - bitmark_compiler_bits_dropped_total: bits removed by a fatal header
//   - bitmark_compiler_diagnostics_total: diagnostics by category and severity
type CompileMetrics struct {
	compilationsTotal *prometheus.CounterVec
	compileDuration   *prometheus.HistogramVec
	documentBits      prometheus.Histogram
	bitsTotal         *prometheus.CounterVec
	bitsDropped       prometheus.Counter
	diagnosticsTotal  *prometheus.CounterVec
}

// NewCompileMetrics creates and registers compile metrics with registry.
func NewCompileMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CompileMetrics {
	cm := &CompileMetrics{
		compilationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compilations_total",
				Help:      "Total number of compiled documents",
			},
			[]string{"status"},
		),

		compileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compile_duration_seconds",
				Help:      "Duration of a document compilation in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"status"},
		),

		documentBits: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "document_bits",
				Help:      "Number of bits in a compiled document",
				Buckets:   cfg.BitBuckets,
			},
		),

		bitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "bits_total",
				Help:      "Total number of compiled bits",
			},
			[]string{"bit_type"},
		),

		bitsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "bits_dropped_total",
				Help:      "Total number of bits removed because their header could not be read",
			},
		),

		diagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "diagnostics_total",
				Help:      "Total number of compiler diagnostics",
			},
			[]string{"category", "severity"},
		),
	}

	registry.MustRegister(
		cm.compilationsTotal,
		cm.compileDuration,
		cm.documentBits,
		cm.bitsTotal,
		cm.bitsDropped,
		cm.diagnosticsTotal,
	)

	return cm
}

// RecordCompilation records a finished compilation.
func (cm *CompileMetrics) RecordCompilation(status string, duration time.Duration) {
	cm.compilationsTotal.WithLabelValues(status).Inc()
	cm.compileDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordDocument records the size of a compiled document.
func (cm *CompileMetrics) RecordDocument(bits, dropped int) {
	cm.documentBits.Observe(float64(bits))
	if dropped > 0 {
		cm.bitsDropped.Add(float64(dropped))
	}
}

// RecordBit counts one compiled bit.
func (cm *CompileMetrics) RecordBit(bitType string) {
	cm.bitsTotal.WithLabelValues(bitType).Inc()
}

// RecordDiagnostic counts one diagnostic.
func (cm *CompileMetrics) RecordDiagnostic(category, severity string) {
	cm.diagnosticsTotal.WithLabelValues(category, severity).Inc()
}
