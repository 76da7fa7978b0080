package otel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Logger 结构化日志接口，args 为交替的键和值
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// WithContext 附加 ctx 中有效 Span 的 trace_id 和 span_id
	WithContext(ctx context.Context) Logger
	WithFields(fields map[string]any) Logger
}

// SlogLogger 基于 log/slog 的 Logger
//
// With* 返回新的实例，原实例的字段不变。
type SlogLogger struct {
	logger   *slog.Logger
	attrs    []any
	traceIDs bool
}

// NewSlogLogger 包装 logger，nil 时使用 slog.Default()
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger, traceIDs: true}
}

// NewLoggerFromConfig 按配置创建 slog.Logger，w 为 nil 时输出到 stderr
func NewLoggerFromConfig(cfg LoggingConfig, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// ParseLevel 空字符串视为 info
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLogLevel, level)
	}
}

// Slog 返回附带了当前字段的 slog.Logger
func (l *SlogLogger) Slog() *slog.Logger {
	return l.logger.With(l.attrs...)
}

func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, l.with(args...)...) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, l.with(args...)...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, l.with(args...)...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, l.with(args...)...) }

// with 返回固定字段加 args 的新切片
func (l *SlogLogger) with(args ...any) []any {
	return append(slices.Clip(l.attrs), args...)
}

func (l *SlogLogger) derive(args ...any) *SlogLogger {
	return &SlogLogger{logger: l.logger, attrs: l.with(args...), traceIDs: l.traceIDs}
}

func (l *SlogLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil || !l.traceIDs {
		return l
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.derive("trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
}

// WithFields 按键排序追加字段，输出顺序稳定
func (l *SlogLogger) WithFields(fields map[string]any) Logger {
	args := make([]any, 0, len(fields)*2)
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, k, fields[k])
	}
	return l.derive(args...)
}

// NoopLogger 丢弃所有日志
type NoopLogger struct{}

func NewNoopLogger() *NoopLogger { return &NoopLogger{} }

func (l *NoopLogger) Debug(string, ...any)               {}
func (l *NoopLogger) Info(string, ...any)                {}
func (l *NoopLogger) Warn(string, ...any)                {}
func (l *NoopLogger) Error(string, ...any)               {}
func (l *NoopLogger) WithContext(context.Context) Logger { return l }
func (l *NoopLogger) WithFields(map[string]any) Logger   { return l }

var (
	_ Logger = (*SlogLogger)(nil)
	_ Logger = (*NoopLogger)(nil)
)
