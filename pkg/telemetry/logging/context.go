package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	// FileKey is the context key for the source file being compiled.
	FileKey contextKey = "file"

	// RecordIDKey is the context key for a stored compile record.
	RecordIDKey contextKey = "record_id"
)

// WithFile adds the source file name to the context.
func WithFile(ctx context.Context, file string) context.Context {
	return context.WithValue(ctx, FileKey, file)
}

// GetFile retrieves the source file name from the context.
func GetFile(ctx context.Context) string {
	if file, ok := ctx.Value(FileKey).(string); ok {
		return file
	}
	return ""
}

// WithRecordID adds a compile record ID to the context.
func WithRecordID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RecordIDKey, id)
}

// GetRecordID retrieves the compile record ID from the context.
func GetRecordID(ctx context.Context) string {
	if id, ok := ctx.Value(RecordIDKey).(string); ok {
		return id
	}
	return ""
}

// extractContextFields returns the log fields carried by ctx, including the
// trace and span IDs of an active span.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	if file := GetFile(ctx); file != "" {
		fields = append(fields, string(FileKey), file)
	}
	if id := GetRecordID(ctx); id != "" {
		fields = append(fields, string(RecordIDKey), id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields, "trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
	}
	return fields
}
