package config

import "time"

// Config is the root configuration of the bitmark compiler and its tools.
// It is loaded from YAML and may be overridden by BITMARK_* environment
// variables.
type Config struct {
	// Compiler contains the settings passed to every compilation.
	Compiler CompilerConfig `yaml:"compiler"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Store contains configuration for the compiled-document store.
	Store StoreConfig `yaml:"store"`

	// Watch contains configuration for the watch command.
	Watch WatchConfig `yaml:"watch"`
}

// CompilerConfig contains compilation settings.
type CompilerConfig struct {
	// MaxDepth is the maximum tag chain nesting accepted by the validator.
	// Default: 32
	MaxDepth int `yaml:"max_depth"`

	// Workers is the number of files compiled concurrently by the CLI.
	// Default: 4
	Workers int `yaml:"workers"`

	// Registry is an optional path to a bit type registry in YAML. When empty
	// the embedded registry is used.
	Registry string `yaml:"registry"`

	// OutputFormat controls how compiled documents are written.
	// Options: "json", "text"
	// Default: "json"
	OutputFormat string `yaml:"output_format"`

	// Pretty indents JSON output.
	// Default: false
	Pretty bool `yaml:"pretty"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "console"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Address is the listen address of the metrics endpoint.
	// Default: "127.0.0.1:9464"
	Address string `yaml:"address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "bitmark"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "compiler"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for compile duration (seconds).
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5]
	DurationBuckets []float64 `yaml:"duration_buckets"`

	// BitBuckets defines histogram buckets for the number of bits per document.
	// Default: [1, 5, 10, 50, 100, 500, 1000]
	BitBuckets []float64 `yaml:"bit_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "bitmark-compiler"
	ServiceName string `yaml:"service_name"`

	// Secure enables TLS for the collector connection.
	// Default: false
	Secure bool `yaml:"secure"`

	// Timeout is the timeout for span exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// StoreConfig contains configuration for the compiled-document store.
type StoreConfig struct {
	// Backend selects the store implementation.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite backend configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention controls pruning of old compile records.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite store configuration.
type SQLiteConfig struct {
	// Path is the database file.
	// Default: "data/bitmark.db"
	Path string `yaml:"path"`

	// JournalMode is the SQLite journal mode.
	// Options: "WAL", "DELETE", "TRUNCATE", "MEMORY"
	// Default: "WAL"
	JournalMode string `yaml:"journal_mode"`

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MaxOpenConns is the connection pool size.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`
}

// RetentionConfig controls pruning of compile records.
type RetentionConfig struct {
	// Enabled runs the pruner on Schedule.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// MaxAge removes records older than this. Zero keeps records forever.
	// Default: 720h
	MaxAge time.Duration `yaml:"max_age"`

	// MaxRecords keeps only the newest records. Zero means no limit.
	// Default: 0
	MaxRecords int `yaml:"max_records"`
}

// WatchConfig contains configuration for recompiling on file changes.
type WatchConfig struct {
	// Debounce is how long to wait after the last change to a file before
	// recompiling it.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`

	// Extensions lists the file extensions that are compiled.
	// Default: [".bitmark", ".bm"]
	Extensions []string `yaml:"extensions"`
}
