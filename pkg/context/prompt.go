package context

import (
	"context"
	"fmt"
	"slices"

	"github.com/easyops/promptfit/pkg/core/errors"
	"github.com/easyops/promptfit/pkg/core/llm"
	"github.com/easyops/promptfit/pkg/core/message"
	"github.com/easyops/promptfit/pkg/otel"
	"github.com/google/uuid"
)

// entry 是 Prompt 中的一条 (角色, 消息)。
type entry struct {
	role message.Role
	msg  *Message
}

// Prompt 持有有序的 (角色, Message) 列表和固定的 Token 预算。
//
// 每个工作单元创建一个新的 Prompt：添加并填充消息，可选地删除消息，
// 然后调用一次 Dispatch。Prompt 不是并发安全的，不同的 Prompt 之间
// 没有共享的可变状态。
type Prompt struct {
	client    llm.Submitter
	limit     int
	counter   TokenCounter
	compactor Compactor

	logger  otel.Logger
	tracer  otel.Tracer
	metrics otel.Metrics

	entries []entry
}

// NewPrompt 创建 Prompt。
//
// client 用于最终提交；未通过 WithCompactor 指定压缩器时，
// 也用于构建默认的 Summarizer。
func NewPrompt(client llm.Submitter, opts ...PromptOption) *Prompt {
	p := &Prompt{
		client: client,
		limit:  DefaultTokenLimit,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.counter == nil {
		p.counter = DefaultTokenCounter()
	}
	if p.compactor == nil {
		p.compactor = NewSummarizer(client)
	}
	if p.logger == nil {
		p.logger = otel.GetLogger()
	}
	if p.tracer == nil {
		p.tracer = otel.GetTracer()
	}
	if p.metrics == nil {
		p.metrics = otel.GetMetrics()
	}

	return p
}

// Add 追加一条指定角色的空消息并返回它。
func (p *Prompt) Add(role message.Role) *Message {
	msg := newMessage(p)
	p.entries = append(p.entries, entry{role: role, msg: msg})
	return msg
}

// Remove 按引用删除消息。msg 为 nil 或不属于该 Prompt 时返回 false。
func (p *Prompt) Remove(msg *Message) bool {
	if msg == nil {
		return false
	}
	i := slices.IndexFunc(p.entries, func(e entry) bool { return e.msg == msg })
	if i < 0 {
		return false
	}
	p.entries = slices.Delete(p.entries, i, i+1)
	return true
}

// Len 返回消息数量。
func (p *Prompt) Len() int {
	return len(p.entries)
}

// Limit 返回 Token 预算。
func (p *Prompt) Limit() int {
	return p.limit
}

// TokenCount 返回所有消息渲染后的 Token 总数。
func (p *Prompt) TokenCount() int {
	total := 0
	for _, e := range p.entries {
		total += p.counter.Count(e.msg.Render())
	}
	return total
}

// Messages 按插入顺序渲染当前内容，不做任何压缩。
func (p *Prompt) Messages() []message.Message {
	msgs := make([]message.Message, 0, len(p.entries))
	for _, e := range p.entries {
		msgs = append(msgs, message.NewMessage(e.role, e.msg.Render()))
	}
	return msgs
}

// Build 压缩内容直到不超过预算，然后按插入顺序渲染。
//
// 每一轮按列表顺序（而不是跨消息的全局优先级）依次调用各消息的 ShrinkOne，
// 一旦总量不超过预算立即停止。完整一轮没有任何消息能再压缩时返回
// ErrBudgetExhausted。
func (p *Prompt) Build(ctx context.Context) ([]message.Message, error) {
	_, err := p.fit(ctx)
	if err != nil {
		return nil, err
	}
	return p.Messages(), nil
}

// fit 执行压缩循环，返回执行的压缩轮数。
func (p *Prompt) fit(ctx context.Context) (int, error) {
	rounds := 0
	total := p.TokenCount()

	for total > p.limit {
		shrunk := false
		for _, e := range p.entries {
			ok, err := e.msg.ShrinkOne(ctx)
			if err != nil {
				return rounds, err
			}
			if !ok {
				continue
			}

			shrunk = true
			rounds++
			total = p.TokenCount()
			if total <= p.limit {
				break
			}
		}

		if !shrunk {
			p.metrics.Counter(otel.MetricPromptBudgetExhausted).Add(ctx, 1)
			return rounds, fmt.Errorf("%w: %d tokens exceed limit %d and no message can be shortened further",
				errors.ErrBudgetExhausted, total, p.limit)
		}
	}

	return rounds, nil
}

// Dispatch 将内容压缩到预算以内，按插入顺序提交，并返回回复文本。
func (p *Prompt) Dispatch(ctx context.Context) (string, error) {
	dispatchID := uuid.NewString()
	ctx, span := p.tracer.Start(ctx, "prompt.dispatch",
		otel.WithSpanKind(otel.SpanKindInternal),
		otel.WithAttributes(
			otel.PromptDispatchID(dispatchID),
			otel.PromptTokenLimit(p.limit),
			otel.PromptMessages(len(p.entries)),
		),
	)
	defer span.End()

	logger := p.logger.WithContext(ctx).WithFields(map[string]any{"dispatch_id": dispatchID})
	p.metrics.Counter(otel.MetricPromptDispatches).Add(ctx, 1)

	before := p.TokenCount()
	rounds, err := p.fit(ctx)
	span.SetAttributes(otel.PromptShrinkRounds(rounds))
	if err != nil {
		logger.Error("prompt does not fit token budget",
			"tokens", before,
			"limit", p.limit,
			"rounds", rounds,
			"fatal", errors.IsFatal(err),
			"error", err,
		)
		otel.Fail(span, err)
		return "", err
	}

	msgs := p.Messages()
	after := p.TokenCount()
	span.SetAttributes(otel.PromptTokens(after))
	p.metrics.Histogram(otel.MetricPromptTokens).Record(ctx, float64(after))
	if p.limit > 0 {
		p.metrics.Gauge(otel.MetricPromptBudgetUsage).Set(ctx, float64(after)/float64(p.limit))
	}
	if rounds > 0 {
		logger.Info("prompt compacted",
			"tokens_before", before,
			"tokens_after", after,
			"limit", p.limit,
			"rounds", rounds,
		)
	}

	reply, err := p.client.Submit(ctx, msgs)
	if err != nil {
		logger.Error("dispatch failed", "fatal", errors.IsFatal(err), "error", err)
		otel.Fail(span, err)
		return "", err
	}

	span.SetStatus(otel.StatusOK, "")
	return reply, nil
}

// compact 调用压缩器，由 Message.ShrinkOne 使用。
func (p *Prompt) compact(ctx context.Context, text string) (string, error) {
	return p.compactor.Compact(ctx, text)
}

// onShrink 记录一次压缩。
func (p *Prompt) onShrink(ctx context.Context, f *DroppableFragment) {
	p.metrics.Counter(otel.MetricPromptShrinkRounds).Add(ctx, 1)
	p.logger.WithContext(ctx).Debug("fragment compacted",
		"seq", f.seq,
		"importance", f.importance,
		"shrink_count", f.shrinkCount,
	)
}

// onEvict 记录一次删除。
func (p *Prompt) onEvict(ctx context.Context, f *DroppableFragment) {
	p.metrics.Counter(otel.MetricPromptEvictions).Add(ctx, 1)
	p.logger.WithContext(ctx).Info("fragment evicted",
		"seq", f.seq,
		"importance", f.importance,
	)
}
