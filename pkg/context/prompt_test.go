package context_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	agentctx "github.com/easyops/promptfit/pkg/context"
	"github.com/easyops/promptfit/pkg/core/errors"
	"github.com/easyops/promptfit/pkg/core/llm"
	"github.com/easyops/promptfit/pkg/core/message"
	"github.com/easyops/promptfit/pkg/otel"
)

func TestPrompt_DispatchSingleShrink(t *testing.T) {
	submitter := &fakeSubmitter{
		summary: "a short summary of the long text",
		reply:   "final answer",
	}
	metrics := otel.NewInMemoryMetrics()

	p := agentctx.NewPrompt(submitter,
		agentctx.WithTokenLimit(50),
		agentctx.WithTokenCounter(wordCounter{}),
		agentctx.WithMetrics(metrics),
	)
	m := p.Add(message.RoleUser)
	m.Pin("You are a helpful assistant\n")
	m.Add(words(80, "lorem"), 0)

	reply, err := p.Dispatch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "final answer" {
		t.Fatalf("expected 'final answer', got %q", reply)
	}
	if n := submitter.summaryCalls(); n != 1 {
		t.Fatalf("expected exactly one summarization, got %d", n)
	}
	if n := metrics.GetCounterValue(otel.MetricPromptShrinkRounds); n != 1 {
		t.Fatalf("expected 1 shrink round, got %d", n)
	}

	final := submitter.lastRequest()
	if len(final) != 1 {
		t.Fatalf("expected 1 message, got %d", len(final))
	}
	expected := "You are a helpful assistant\na short summary of the long text"
	if final[0].Role != message.RoleUser || final[0].Content != expected {
		t.Fatalf("unexpected submission: %+v", final[0])
	}
	if p.TokenCount() > 50 {
		t.Fatalf("expected token count within limit, got %d", p.TokenCount())
	}
	if usage := metrics.GetGaugeValue(otel.MetricPromptBudgetUsage); usage != float64(p.TokenCount())/50 {
		t.Fatalf("expected budget usage %v, got %v", float64(p.TokenCount())/50, usage)
	}
}

func TestPrompt_BuildTwoRounds(t *testing.T) {
	compactor := &recordingCompactor{}
	p := agentctx.NewPrompt(&fakeSubmitter{},
		agentctx.WithTokenLimit(7),
		agentctx.WithTokenCounter(wordCounter{}),
		agentctx.WithCompactor(compactor),
	)

	m := p.Add(message.RoleUser)
	m.Pin("header ")
	m.Add("one a b c ", 1)
	m.Add("two a b c ", 1)
	m.Add("three a b c ", 1)

	msgs, err := p.Build(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := compactor.calls()
	if len(calls) != 2 || calls[0] != "one a b c " || calls[1] != "two a b c " {
		t.Fatalf("expected two rounds on seq 1 then seq 2, got %q", calls)
	}
	if msgs[0].Content != "header x x three a b c " {
		t.Fatalf("unexpected content %q", msgs[0].Content)
	}
}

func TestPrompt_NoShrinkUnderLimit(t *testing.T) {
	compactor := &recordingCompactor{}
	submitter := &fakeSubmitter{reply: "ok"}
	p := agentctx.NewPrompt(submitter,
		agentctx.WithTokenLimit(100),
		agentctx.WithTokenCounter(wordCounter{}),
		agentctx.WithCompactor(compactor),
	)
	p.Add(message.RoleSystem).Pin("be brief")
	p.Add(message.RoleUser).Add("hello there", 0)

	reply, err := p.Dispatch(context.Background())
	if err != nil || reply != "ok" {
		t.Fatalf("expected ('ok', nil), got (%q, %v)", reply, err)
	}
	if len(compactor.calls()) != 0 {
		t.Fatal("expected no compaction under limit")
	}

	final := submitter.lastRequest()
	if len(final) != 2 || final[0].Role != message.RoleSystem || final[1].Role != message.RoleUser {
		t.Fatalf("expected system then user, got %+v", final)
	}
}

func TestPrompt_BudgetExhausted(t *testing.T) {
	submitter := &fakeSubmitter{reply: "unused"}
	metrics := otel.NewInMemoryMetrics()
	p := agentctx.NewPrompt(submitter,
		agentctx.WithTokenLimit(3),
		agentctx.WithTokenCounter(wordCounter{}),
		agentctx.WithMetrics(metrics),
	)
	p.Add(message.RoleSystem).Pin("one two three")
	p.Add(message.RoleUser).Pin("four five")

	_, err := p.Dispatch(context.Background())
	if !stderrors.Is(err, errors.ErrBudgetExhausted) {
		t.Fatalf("expected ErrBudgetExhausted, got %v", err)
	}
	if len(submitter.requests) != 0 {
		t.Fatalf("expected no remote calls, got %d", len(submitter.requests))
	}
	if metrics.GetCounterValue(otel.MetricPromptBudgetExhausted) != 1 {
		t.Fatal("expected budget exhausted metric to be recorded")
	}
}

func TestPrompt_EvictionThenExhaustion(t *testing.T) {
	compactor := &recordingCompactor{
		output: func(text string) (string, error) { return text, nil },
	}
	metrics := otel.NewInMemoryMetrics()
	p := agentctx.NewPrompt(&fakeSubmitter{},
		agentctx.WithTokenLimit(2),
		agentctx.WithTokenCounter(wordCounter{}),
		agentctx.WithCompactor(compactor),
		agentctx.WithMetrics(metrics),
	)
	m := p.Add(message.RoleUser)
	m.Pin("a b c")
	m.Add(" stubborn text", 0)

	_, err := p.Build(context.Background())
	if !stderrors.Is(err, errors.ErrBudgetExhausted) {
		t.Fatalf("expected ErrBudgetExhausted, got %v", err)
	}
	if got := len(compactor.calls()); got != agentctx.MaxShrinkRounds {
		t.Fatalf("expected %d compactions, got %d", agentctx.MaxShrinkRounds, got)
	}
	if metrics.GetCounterValue(otel.MetricPromptEvictions) != 1 {
		t.Fatal("expected one eviction")
	}
	if m.Render() != "a b c" {
		t.Fatalf("expected only pinned text to remain, got %q", m.Render())
	}
}

func TestPrompt_ListOrderAcrossMessages(t *testing.T) {
	compactor := &recordingCompactor{}
	p := agentctx.NewPrompt(&fakeSubmitter{},
		agentctx.WithTokenLimit(11),
		agentctx.WithTokenCounter(wordCounter{}),
		agentctx.WithCompactor(compactor),
	)

	small := p.Add(message.RoleUser)
	small.Add("a b", 0)
	large := p.Add(message.RoleAssistant)
	large.Add(words(10, "big"), 0)

	if _, err := p.Build(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls := compactor.calls(); len(calls) != 1 || calls[0] != "a b" {
		t.Fatalf("expected only the first message to shrink, got %q", calls)
	}
	if large.Render() != words(10, "big") {
		t.Fatalf("expected second message untouched, got %q", large.Render())
	}
}

func TestPrompt_CompactorErrorPropagates(t *testing.T) {
	boom := stderrors.New("compactor failed")
	submitter := &fakeSubmitter{reply: "unused"}
	p := agentctx.NewPrompt(submitter,
		agentctx.WithTokenLimit(1),
		agentctx.WithTokenCounter(wordCounter{}),
		agentctx.WithCompactor(&recordingCompactor{
			output: func(string) (string, error) { return "", boom },
		}),
	)
	p.Add(message.RoleUser).Add("too many words here", 0)

	_, err := p.Dispatch(context.Background())
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected compactor error, got %v", err)
	}
	if len(submitter.requests) != 0 {
		t.Fatal("expected no submission after compaction failure")
	}
}

// failingProvider 总是返回错误
type failingProvider struct {
	calls int
}

func (p *failingProvider) Generate(context.Context, llm.Request) (llm.Response, error) {
	p.calls++
	return llm.Response{}, errors.ErrProviderUnavailable
}

func (p *failingProvider) Name() string  { return "failing" }
func (p *failingProvider) Model() string { return "none" }
func (p *failingProvider) Close() error  { return nil }

func TestPrompt_DispatchRemoteFailure(t *testing.T) {
	provider := &failingProvider{}
	client := llm.NewClient(provider, llm.WithMaxAttempts(3))

	p := agentctx.NewPrompt(client, agentctx.WithTokenCounter(wordCounter{}))
	p.Add(message.RoleUser).Pin("hello")

	_, err := p.Dispatch(context.Background())
	if !stderrors.Is(err, errors.ErrRemoteCallFailed) {
		t.Fatalf("expected ErrRemoteCallFailed, got %v", err)
	}
	if !stderrors.Is(err, errors.ErrProviderUnavailable) {
		t.Fatalf("expected last error to be preserved, got %v", err)
	}
	if provider.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", provider.calls)
	}
}

func TestPrompt_Remove(t *testing.T) {
	p := agentctx.NewPrompt(&fakeSubmitter{}, agentctx.WithTokenCounter(wordCounter{}))
	other := agentctx.NewPrompt(&fakeSubmitter{})

	first := p.Add(message.RoleSystem).Pin("first")
	second := p.Add(message.RoleUser).Pin("second")
	foreign := other.Add(message.RoleUser)

	if p.Remove(nil) {
		t.Fatal("expected nil removal to fail")
	}
	if p.Remove(foreign) {
		t.Fatal("expected foreign removal to fail")
	}
	if !p.Remove(first) {
		t.Fatal("expected removal to succeed")
	}
	if p.Remove(first) {
		t.Fatal("expected second removal to fail")
	}

	msgs := p.Messages()
	if p.Len() != 1 || len(msgs) != 1 || msgs[0].Content != "second" {
		t.Fatalf("expected only 'second' to remain, got %+v", msgs)
	}

	// 删除消息不影响剩余消息的片段序号
	if f := second.Pinned()[0]; f.Seq() != 0 {
		t.Fatalf("expected seq 0, got %d", f.Seq())
	}
}

func TestPrompt_Defaults(t *testing.T) {
	p := agentctx.NewPrompt(&fakeSubmitter{})
	if p.Limit() != agentctx.DefaultTokenLimit {
		t.Fatalf("expected default limit %d, got %d", agentctx.DefaultTokenLimit, p.Limit())
	}
	if p.Len() != 0 || p.TokenCount() != 0 {
		t.Fatalf("expected empty prompt, got %d messages / %d tokens", p.Len(), p.TokenCount())
	}
}

func TestPrompt_DefaultCompactorUsesClient(t *testing.T) {
	submitter := &fakeSubmitter{summary: "tiny", reply: "done"}
	p := agentctx.NewPrompt(submitter,
		agentctx.WithTokenLimit(5),
		agentctx.WithTokenCounter(wordCounter{}),
	)
	p.Add(message.RoleUser).Add(words(20, "word"), 0)

	if _, err := p.Dispatch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary := submitter.requests[0]
	if !strings.HasSuffix(summary[1].Content, words(20, "word")) {
		t.Fatalf("expected summarization of original text, got %q", summary[1].Content)
	}
}
