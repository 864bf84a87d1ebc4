package config

import "time"

// Default values for configuration fields.
const (
	// Compiler defaults
	DefaultMaxDepth     = 32
	DefaultWorkers      = 4
	DefaultOutputFormat = "json"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	// Metrics defaults
	DefaultMetricsAddress   = "127.0.0.1:9464"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "bitmark"
	DefaultMetricsSubsystem = "compiler"

	// Tracing defaults
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingServiceName = "bitmark-compiler"
	DefaultTracingTimeout     = 10 * time.Second

	// Store defaults
	DefaultStoreBackend        = "memory"
	DefaultSQLitePath          = "data/bitmark.db"
	DefaultSQLiteJournalMode   = "WAL"
	DefaultSQLiteBusyTimeout   = 5 * time.Second
	DefaultSQLiteMaxOpenConns  = 4
	DefaultRetentionSchedule   = "0 3 * * *"
	DefaultRetentionMaxAge     = 30 * 24 * time.Hour
	DefaultRetentionMaxRecords = 0

	// Watch defaults
	DefaultWatchDebounce = 100 * time.Millisecond
)

var (
	// DefaultDurationBuckets are the compile duration histogram buckets in seconds.
	DefaultDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

	// DefaultBitBuckets are the bits-per-document histogram buckets.
	DefaultBitBuckets = []float64{1, 5, 10, 50, 100, 500, 1000}

	// DefaultWatchExtensions are the file extensions compiled by watch.
	DefaultWatchExtensions = []string{".bitmark", ".bm"}
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field of cfg with its default value.
func ApplyDefaults(cfg *Config) {
	// Compiler defaults
	if cfg.Compiler.MaxDepth == 0 {
		cfg.Compiler.MaxDepth = DefaultMaxDepth
	}
	if cfg.Compiler.Workers == 0 {
		cfg.Compiler.Workers = DefaultWorkers
	}
	if cfg.Compiler.OutputFormat == "" {
		cfg.Compiler.OutputFormat = DefaultOutputFormat
	}

	applyTelemetryDefaults(&cfg.Telemetry)
	applyStoreDefaults(&cfg.Store)

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = append([]string(nil), DefaultWatchExtensions...)
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = DefaultMetricsAddress
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Metrics.DurationBuckets) == 0 {
		cfg.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if len(cfg.Metrics.BitBuckets) == 0 {
		cfg.Metrics.BitBuckets = append([]float64(nil), DefaultBitBuckets...)
	}

	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
}

func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultStoreBackend
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultSQLitePath
	}
	if cfg.SQLite.JournalMode == "" {
		cfg.SQLite.JournalMode = DefaultSQLiteJournalMode
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.SQLite.MaxOpenConns == 0 {
		cfg.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultRetentionSchedule
	}
	if cfg.Retention.MaxAge == 0 {
		cfg.Retention.MaxAge = DefaultRetentionMaxAge
	}
}
