package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bitmark-hq/compiler/pkg/bitmark/ast"
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/config"
)

// otherLabel replaces label values beyond the cardinality limit.
const otherLabel = "other"

// Collector owns every Prometheus metric of the compiler tools.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	compileMetrics *CompileMetrics
	storeMetrics   *StoreMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector and registers its metrics with registry.
// A nil registry gets a fresh one.
//
// Example:
//
//	cfg := config.Default().Telemetry.Metrics
//	cfg.Enabled = true
//	collector := metrics.NewCollector(&cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets
	}
	if len(cfg.BitBuckets) == 0 {
		cfg.BitBuckets = config.DefaultBitBuckets
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		compileMetrics:     NewCompileMetrics(cfg, registry),
		storeMetrics:       NewStoreMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}
}

// RecordCompile records one compilation: its outcome and duration, the bits
// it produced by type, the bits it dropped and its diagnostics.
func (c *Collector) RecordCompile(duration time.Duration, doc *ast.Document, diags *bmErrors.DiagnosticList, err error) {
	if !c.config.Enabled {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	c.compileMetrics.RecordCompilation(status, duration)
	if doc != nil {
		c.compileMetrics.RecordDocument(len(doc.Bits), len(doc.Errors))
		for _, bit := range doc.Bits {
			bitType := bit.Type
			if !c.cardinalityLimiter.Allow("bit:" + bitType) {
				bitType = otherLabel
			}
			c.compileMetrics.RecordBit(bitType)
		}
	}
	if diags != nil {
		for _, d := range diags.Diagnostics {
			c.compileMetrics.RecordDiagnostic(string(d.Category), string(d.Severity))
		}
	}
}

// ObserveStore records a store operation.
func (c *Collector) ObserveStore(op string, duration time.Duration, err error) {
	if !c.config.Enabled {
		return
	}
	c.storeMetrics.RecordOperation(op, duration, err)
}

// ObservePrune records the records removed by one retention run.
func (c *Collector) ObservePrune(removed int64, err error) {
	if !c.config.Enabled {
		return
	}
	c.storeMetrics.RecordPrune(removed, err)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of distinct label values a collector
// hands out.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter allowing maxCardinality label sets.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is already known or still fits under the
// limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	_, exists := cl.current[labelSet]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
