// Package telemetry groups the observability packages of the bitmark tools:
//
//   - logging: structured slog logging in json, text or console format
//   - metrics: Prometheus counters and histograms for compilations and the
//     document store, served over HTTP
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: liveness and readiness probes for the watch command
//
// Each package is configured from the matching section of config.Config.
package telemetry
