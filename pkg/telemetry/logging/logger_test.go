package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"bitmark-hq/compiler/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantLevel slog.Level
		wantErr   bool
	}{
		{name: "defaults", config: Config{}, wantLevel: slog.LevelInfo},
		{name: "json debug", config: Config{Level: "debug", Format: "json"}, wantLevel: slog.LevelDebug},
		{name: "case is ignored", config: Config{Level: "WARN", Format: "Console"}, wantLevel: slog.LevelWarn},
		{name: "warning alias", config: Config{Level: "warning", Format: "text"}, wantLevel: slog.LevelWarn},
		{name: "invalid level", config: Config{Level: "loud"}, wantErr: true},
		{name: "invalid format", config: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && logger.Level() != tt.wantLevel {
				t.Errorf("Level() = %v, want %v", logger.Level(), tt.wantLevel)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Component("watch").Info("recompiled", "bits", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "recompiled" || entry["component"] != "watch" || entry["bits"] != float64(3) {
		t.Errorf("entry = %v", entry)
	}
}

func TestConsoleOmitsTime(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Warn("slow compile", "file", "a.bitmark")

	got := strings.TrimSpace(buf.String())
	if want := `level=WARN msg="slow compile" file=a.bitmark`; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1},
		SpanID:  trace.SpanID{2},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithRecordID(WithFile(ctx, "quiz.bitmark"), "rec-1")

	logger.InfoContext(ctx, "stored")

	out := buf.String()
	for _, want := range []string{
		"file=quiz.bitmark",
		"record_id=rec-1",
		"trace_id=" + sc.TraceID().String(),
		"span_id=" + sc.SpanID().String(),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if GetFile(context.Background()) != "" || GetRecordID(context.Background()) != "" {
		t.Error("empty context returned values")
	}
}

func TestFromConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := FromConfig(config.LoggingConfig{Level: "error", Format: "text", AddSource: true}, &buf)
	if cfg.Level != "error" || cfg.Format != "text" || !cfg.AddSource || cfg.Writer != &buf {
		t.Errorf("FromConfig() = %+v", cfg)
	}
}

func TestSetDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.SetDefault()
	slog.Info("via default")

	if !strings.Contains(buf.String(), `"msg":"via default"`) {
		t.Errorf("default logger did not write to the configured writer: %q", buf.String())
	}
}
