package context

import (
	"github.com/easyops/promptfit/pkg/otel"
)

// DefaultTokenLimit 是默认的请求 Token 预算。
const DefaultTokenLimit = 4000

// PromptOption 配置 Prompt。
type PromptOption func(*Prompt)

// WithTokenLimit 设置整个请求的 Token 预算。
func WithTokenLimit(limit int) PromptOption {
	return func(p *Prompt) {
		p.limit = limit
	}
}

// WithTokenCounter 设置 Token 计数器。
func WithTokenCounter(counter TokenCounter) PromptOption {
	return func(p *Prompt) {
		p.counter = counter
	}
}

// WithCompactor 设置压缩器，默认使用基于同一 Client 的 Summarizer。
func WithCompactor(compactor Compactor) PromptOption {
	return func(p *Prompt) {
		p.compactor = compactor
	}
}

// WithLogger 设置日志器。
func WithLogger(logger otel.Logger) PromptOption {
	return func(p *Prompt) {
		p.logger = logger
	}
}

// WithTracer 设置追踪器。
func WithTracer(tracer otel.Tracer) PromptOption {
	return func(p *Prompt) {
		p.tracer = tracer
	}
}

// WithMetrics 设置指标收集器。
func WithMetrics(metrics otel.Metrics) PromptOption {
	return func(p *Prompt) {
		p.metrics = metrics
	}
}
