package otel_test

import (
	"context"
	"errors"
	"testing"

	coreerrors "github.com/easyops/promptfit/pkg/core/errors"
	"github.com/easyops/promptfit/pkg/core/llm"
	"github.com/easyops/promptfit/pkg/core/message"
	"github.com/easyops/promptfit/pkg/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type stubProvider struct {
	err error
}

func (p *stubProvider) Generate(context.Context, llm.Request) (llm.Response, error) {
	if p.err != nil {
		return llm.Response{}, p.err
	}
	return llm.Response{
		Content:    "ok",
		TokenUsage: message.TokenUsage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7},
	}, nil
}

func (p *stubProvider) Name() string  { return "stub" }
func (p *stubProvider) Model() string { return "stub-model" }
func (p *stubProvider) Close() error  { return nil }

func TestTracedProvider_Success(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()
	p := otel.NewTracedProvider(&stubProvider{}, otel.NewNoopTracer(), metrics)

	resp, err := p.Generate(context.Background(), llm.Request{})
	if err != nil || resp.Content != "ok" {
		t.Fatalf("expected ('ok', nil), got (%q, %v)", resp.Content, err)
	}
	if p.Name() != "stub" || p.Model() != "stub-model" {
		t.Fatalf("expected wrapped identity, got %s/%s", p.Name(), p.Model())
	}
	if metrics.GetCounterValue(otel.MetricLLMRequests) != 1 {
		t.Error("expected request to be counted")
	}
	if metrics.GetCounterValue(otel.MetricLLMTokensPrompt) != 5 {
		t.Error("expected prompt tokens to be counted")
	}
}

func TestTracedProvider_Error(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	p := otel.NewTracedProvider(&stubProvider{err: coreerrors.ErrRateLimited},
		otel.NewTracer(tp.Tracer("test")), metrics)

	_, err := p.Generate(context.Background(), llm.Request{})
	if !errors.Is(err, coreerrors.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if metrics.GetCounterValue(otel.MetricLLMErrors) != 1 {
		t.Error("expected error to be counted")
	}

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != "llm.generate" {
		t.Fatalf("expected one llm.generate span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status())
	}
	retryable := false
	for _, kv := range spans[0].Attributes() {
		if string(kv.Key) == otel.AttrErrorRetryable {
			retryable = kv.Value.AsBool()
		}
	}
	if !retryable {
		t.Error("expected rate limit to be marked retryable")
	}
}
