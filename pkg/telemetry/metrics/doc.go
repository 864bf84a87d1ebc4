// Package metrics provides Prometheus metrics for the bitmark compiler tools.
//
// # Metrics Categories
//
//   - Compile Metrics: compilations, duration, bits per document, bits by
//     type, dropped bits and diagnostics by category
//   - Store Metrics: store operations and retention runs
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	compiler := bitmark.NewCompiler(bitmark.WithRecorder(collector))
//	st = store.Instrument(st, collector)
//
//	srv := collector.NewServer()
//	go srv.ListenAndServe()
//
// A disabled collector records nothing, so it can be wired unconditionally.
//
// # Cardinality
//
// Bit types come from the registry and are bounded, but custom registries can
// add more. Past 1000 distinct bit types new ones are counted as "other".
package metrics
