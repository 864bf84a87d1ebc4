// Package config provides configuration management for the bitmark compiler
// and its command-line tools.
//
// Configuration is read from YAML, completed with defaults and checked by
// Validate before use:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("bitmark.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention BITMARK_SECTION_FIELD:
//
//   - BITMARK_COMPILER_WORKERS overrides compiler.workers
//   - BITMARK_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//   - BITMARK_STORE_SQLITE_PATH overrides store.sqlite.path
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton
//
// Commands that need configuration in many places call Initialize once and
// GetConfig afterwards. Library code takes an explicit *Config instead.
//
// # Example Configuration
//
//	compiler:
//	  workers: 8
//	  output_format: json
//
//	telemetry:
//	  logging:
//	    level: debug
//	  metrics:
//	    enabled: true
//	    address: "127.0.0.1:9464"
//
//	store:
//	  backend: sqlite
//	  sqlite:
//	    path: data/bitmark.db
//	  retention:
//	    enabled: true
//	    schedule: "0 3 * * *"
//	    max_age: 720h
//
//	watch:
//	  debounce: 200ms
package config
