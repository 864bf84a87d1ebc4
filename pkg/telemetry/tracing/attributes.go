package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys use the "bitmark.*" namespace.
const (
	// Source attributes
	AttrFile        = "bitmark.file"
	AttrSourceBytes = "bitmark.source.bytes"
	AttrSourceHash  = "bitmark.source.hash"

	// Result attributes
	AttrBits        = "bitmark.bits"
	AttrBitsDropped = "bitmark.bits.dropped"
	AttrDiagnostics = "bitmark.diagnostics"
	AttrErrors      = "bitmark.errors"

	// Bit attributes
	AttrBitType  = "bitmark.bit.type"
	AttrBitLevel = "bitmark.bit.level"

	// Store attributes
	AttrStoreOp  = "bitmark.store.operation"
	AttrRecordID = "bitmark.store.record_id"

	// Error attributes
	AttrErrorMessage = "error.message"
)

// SetSourceAttributes sets the attributes of the markup being compiled.
func SetSourceAttributes(span trace.Span, file string, size int) {
	span.SetAttributes(
		attribute.String(AttrFile, file),
		attribute.Int(AttrSourceBytes, size),
	)
}

// SetResultAttributes sets the outcome of a compilation.
func SetResultAttributes(span trace.Span, bits, dropped, diagnostics, errors int) {
	span.SetAttributes(
		attribute.Int(AttrBits, bits),
		attribute.Int(AttrBitsDropped, dropped),
		attribute.Int(AttrDiagnostics, diagnostics),
		attribute.Int(AttrErrors, errors),
	)
}

// AddBitEvent records a compiled bit as a span event.
func AddBitEvent(span trace.Span, bitType string, level int) {
	span.AddEvent("bit", trace.WithAttributes(
		attribute.String(AttrBitType, bitType),
		attribute.Int(AttrBitLevel, level),
	))
}
