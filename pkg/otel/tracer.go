// Package otel 提供 OpenTelemetry 可观测性支持
//
// 包括 Prompt 组装和 LLM 调用的追踪、指标以及基于 slog 的结构化日志。
// 未初始化全局 Provider 时，所有获取函数返回空实现。
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer 创建 Span 的最小接口，Prompt 和 TracedProvider 只依赖它
type Tracer interface {
	// Start 在 ctx 之下开始一个 Span，返回携带该 Span 的上下文
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// SpanFromContext 返回 ctx 中的当前 Span
	SpanFromContext(ctx context.Context) Span
}

// Span 一次被追踪的操作
type Span interface {
	End()
	SetAttributes(attrs ...attribute.KeyValue)
	AddEvent(name string, attrs ...attribute.KeyValue)
	RecordError(err error)
	SetStatus(code StatusCode, description string)
	SpanContext() SpanContext
}

// SpanContext Span 的标识，未采样或空实现时两个字段为空
type SpanContext struct {
	TraceID string
	SpanID  string
}

// StatusCode Span 状态码
type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

// SpanKind Span 类型
type SpanKind int

const (
	// SpanKindInternal 进程内操作，例如一次 Dispatch
	SpanKindInternal SpanKind = iota
	// SpanKindClient 对远程服务的调用，例如一次模型请求
	SpanKindClient
)

// SpanOption Span 配置选项
type SpanOption func(*spanConfig)

type spanConfig struct {
	kind  SpanKind
	attrs []attribute.KeyValue
}

// WithSpanKind 设置 Span 类型
func WithSpanKind(kind SpanKind) SpanOption {
	return func(cfg *spanConfig) {
		cfg.kind = kind
	}
}

// WithAttributes 设置 Span 的初始属性
func WithAttributes(attrs ...attribute.KeyValue) SpanOption {
	return func(cfg *spanConfig) {
		cfg.attrs = append(cfg.attrs, attrs...)
	}
}

// Fail 记录错误并把 Span 标记为失败
func Fail(span Span, err error) {
	span.RecordError(err)
	span.SetStatus(StatusError, err.Error())
}

// OTelTracer 基于 OpenTelemetry SDK 的 Tracer
type OTelTracer struct {
	tracer trace.Tracer
}

// NewTracer 包装一个 OpenTelemetry Tracer
func NewTracer(tracer trace.Tracer) *OTelTracer {
	return &OTelTracer{tracer: tracer}
}

// Start 开始一个新的 Span
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span) {
	cfg := spanConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	kind := trace.SpanKindInternal
	if cfg.kind == SpanKindClient {
		kind = trace.SpanKindClient
	}

	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(kind),
		trace.WithAttributes(cfg.attrs...),
	)
	return ctx, otelSpan{span}
}

// SpanFromContext 返回 ctx 中的当前 Span
func (t *OTelTracer) SpanFromContext(ctx context.Context) Span {
	return otelSpan{trace.SpanFromContext(ctx)}
}

// otelSpan 把 trace.Span 适配为 Span
type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End() { s.span.End() }

func (s otelSpan) SetAttributes(attrs ...attribute.KeyValue) { s.span.SetAttributes(attrs...) }

func (s otelSpan) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

func (s otelSpan) RecordError(err error) { s.span.RecordError(err) }

func (s otelSpan) SetStatus(code StatusCode, description string) {
	switch code {
	case StatusOK:
		// OpenTelemetry 只为 Error 保留描述
		s.span.SetStatus(codes.Ok, "")
	case StatusError:
		s.span.SetStatus(codes.Error, description)
	default:
		s.span.SetStatus(codes.Unset, "")
	}
}

func (s otelSpan) SpanContext() SpanContext {
	sc := s.span.SpanContext()
	if !sc.IsValid() {
		return SpanContext{}
	}
	return SpanContext{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NoopTracer 不记录任何内容的 Tracer
type NoopTracer struct{}

// NewNoopTracer 创建空实现追踪器
func NewNoopTracer() *NoopTracer {
	return &NoopTracer{}
}

// Start 返回原上下文和空 Span
func (t *NoopTracer) Start(ctx context.Context, _ string, _ ...SpanOption) (context.Context, Span) {
	return ctx, noopSpan{}
}

// SpanFromContext 返回空 Span
func (t *NoopTracer) SpanFromContext(context.Context) Span {
	return noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End()                                   {}
func (noopSpan) SetAttributes(...attribute.KeyValue)    {}
func (noopSpan) AddEvent(string, ...attribute.KeyValue) {}
func (noopSpan) RecordError(error)                      {}
func (noopSpan) SetStatus(StatusCode, string)           {}
func (noopSpan) SpanContext() SpanContext               { return SpanContext{} }

var (
	_ Tracer = (*OTelTracer)(nil)
	_ Tracer = (*NoopTracer)(nil)
	_ Span   = otelSpan{}
	_ Span   = noopSpan{}
)
