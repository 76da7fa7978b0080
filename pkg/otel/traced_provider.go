package otel

import (
	"context"
	"time"

	"github.com/easyops/promptfit/pkg/core/errors"
	"github.com/easyops/promptfit/pkg/core/llm"
	"go.opentelemetry.io/otel/attribute"
)

// TracedProvider 给 llm.Provider 的每次 Generate 记录一个客户端 Span 和调用指标
//
// 放在 llm.Client 之下时，每次重试都是一个独立的 Span。
type TracedProvider struct {
	llm.Provider
	tracer  Tracer
	metrics Metrics
}

// NewTracedProvider 包装 inner；tracer 或 metrics 为 nil 时使用全局实例
func NewTracedProvider(inner llm.Provider, tracer Tracer, metrics Metrics) *TracedProvider {
	if tracer == nil {
		tracer = GetTracer()
	}
	if metrics == nil {
		metrics = GetMetrics()
	}
	return &TracedProvider{Provider: inner, tracer: tracer, metrics: metrics}
}

func (p *TracedProvider) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	ctx, span := p.tracer.Start(ctx, "llm.generate",
		WithSpanKind(SpanKindClient),
		WithAttributes(
			LLMProvider(p.Name()),
			LLMModel(p.Model()),
			attribute.Int("llm.messages", len(req.Messages)),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := p.Provider.Generate(ctx, req)
	p.record(ctx, resp.TokenUsage.PromptTokens, resp.TokenUsage.CompletionTokens, time.Since(start), err)

	if err != nil {
		span.SetAttributes(attribute.Bool(AttrErrorRetryable, errors.IsRetryable(err)))
		Fail(span, err)
		return resp, err
	}

	u := resp.TokenUsage
	span.SetAttributes(LLMTokens(u.PromptTokens, u.CompletionTokens, u.TotalTokens)...)
	span.AddEvent("llm.response", attribute.String("finish_reason", resp.FinishReason))
	span.SetStatus(StatusOK, "")
	return resp, nil
}

// record 每次尝试计一次请求；失败的尝试不计 Token
func (p *TracedProvider) record(ctx context.Context, promptTokens, completionTokens int, d time.Duration, err error) {
	attrs := []Attr{NewAttr("provider", p.Name()), NewAttr("model", p.Model())}
	p.metrics.Histogram(MetricLLMRequestDuration).Record(ctx, float64(d.Milliseconds()), attrs...)

	if err != nil {
		p.metrics.Counter(MetricLLMRequests).Add(ctx, 1, append(attrs, NewAttr("status", "error"))...)
		p.metrics.Counter(MetricLLMErrors).Add(ctx, 1, attrs...)
		return
	}
	p.metrics.Counter(MetricLLMRequests).Add(ctx, 1, append(attrs, NewAttr("status", "success"))...)
	p.metrics.Counter(MetricLLMTokensPrompt).Add(ctx, int64(promptTokens), attrs...)
	p.metrics.Counter(MetricLLMTokensCompletion).Add(ctx, int64(completionTokens), attrs...)
}

var _ llm.Provider = (*TracedProvider)(nil)
