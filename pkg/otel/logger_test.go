package otel_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/easyops/promptfit/pkg/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewLoggerFromConfig_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := otel.NewLoggerFromConfig(otel.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("dropped")
	logger.Warn("kept", "attempt", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("expected JSON output, got %q", lines[0])
	}
	if record["msg"] != "kept" || record["attempt"] != float64(2) {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestParseLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "", "warn", "warning", "error", "DEBUG"} {
		if _, err := otel.ParseLevel(level); err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", level, err)
		}
	}
	if _, err := otel.ParseLevel("verbose"); !errors.Is(err, otel.ErrInvalidLogLevel) {
		t.Errorf("expected ErrInvalidLogLevel, got %v", err)
	}
}

func TestSlogLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	base, _ := otel.NewLoggerFromConfig(otel.LoggingConfig{Format: "text"}, &buf)

	logger := otel.NewSlogLogger(base).WithFields(map[string]any{"dispatch_id": "abc"})
	logger.Info("hello", "tokens", 12)

	out := buf.String()
	if !strings.Contains(out, "dispatch_id=abc") || !strings.Contains(out, "tokens=12") {
		t.Fatalf("expected fields in output, got %q", out)
	}
}

func TestSlogLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	base, _ := otel.NewLoggerFromConfig(otel.LoggingConfig{}, &buf)
	logger := otel.NewSlogLogger(base)

	// 没有 Span 时不附加 trace 字段
	logger.WithContext(context.Background()).Info("no span")
	if strings.Contains(buf.String(), "trace_id") {
		t.Fatalf("expected no trace id, got %q", buf.String())
	}
	buf.Reset()

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.WithContext(ctx).Info("with span")
	if !strings.Contains(buf.String(), "trace_id="+span.SpanContext().TraceID().String()) {
		t.Fatalf("expected trace id in output, got %q", buf.String())
	}
}

func TestNoopLogger(t *testing.T) {
	logger := otel.NewNoopLogger()

	// 空实现不应 panic
	logger.WithContext(context.Background()).WithFields(map[string]any{"k": "v"}).Info("x")
}
