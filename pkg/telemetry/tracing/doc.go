// Package tracing sets up OpenTelemetry tracing for the bitmark tools.
//
// New builds a tracer provider that exports spans over OTLP gRPC and installs
// it globally. The compiler starts its spans from otel.Tracer, so once a
// Tracer is created every compilation is traced:
//
//	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// # Spans
//
//   - bitmark.compile: one per document, with source and result attributes
//     and one "bit" event per compiled bit
//   - bitmark.tokenize and bitmark.parse: children of bitmark.compile
//   - bitmark.store.*: one per store call
//
// # Sampling
//
// The sampler is one of always, never or ratio, wrapped in ParentBased.
package tracing
