package context_test

import (
	stderrors "errors"
	"testing"

	agentctx "github.com/easyops/promptfit/pkg/context"
	"github.com/easyops/promptfit/pkg/core/config"
	"github.com/easyops/promptfit/pkg/core/message"
)

func TestEstimatedCounter_Count(t *testing.T) {
	counter := agentctx.NewEstimatedCounter()

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{
			name:     "empty string",
			text:     "",
			expected: 0,
		},
		{
			name:     "short text",
			text:     "hello",
			expected: 1, // 5 chars / 4 = 1
		},
		{
			name:     "longer text",
			text:     "hello world, this is a test",
			expected: 6, // 27 chars / 4 = 6
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := counter.Count(tt.text)
			if result != tt.expected {
				t.Errorf("Count(%q) = %d, want %d", tt.text, result, tt.expected)
			}
		})
	}
}

func TestEstimatedCounter_CountMessages(t *testing.T) {
	counter := agentctx.NewEstimatedCounter()

	messages := []message.Message{
		{Role: message.RoleUser, Content: "Hello"},
		{Role: message.RoleAssistant, Content: "Hi there"},
	}

	if result := counter.CountMessages(messages); result <= 0 {
		t.Errorf("CountMessages should return positive count, got %d", result)
	}
}

func TestCodecCounter_Count(t *testing.T) {
	counter, err := agentctx.NewCodecCounter("gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := counter.Count(""); n != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", n)
	}

	short := counter.Count("hello")
	long := counter.Count("hello world, this is a much longer piece of text")
	if short <= 0 || long <= short {
		t.Errorf("expected 0 < %d < %d", short, long)
	}

	// 相同输入总是返回相同结果
	if counter.Count("hello") != short {
		t.Error("expected deterministic count")
	}
}

func TestCodecCounter_UnknownModelFallsBack(t *testing.T) {
	counter, err := agentctx.NewCodecCounter("not-a-real-model")
	if err != nil {
		t.Fatalf("expected cl100k_base fallback, got %v", err)
	}
	if counter.Count("hello world") <= 0 {
		t.Error("expected positive count")
	}
}

func TestNewTokenCounter(t *testing.T) {
	tests := []struct {
		name string
		kind config.Tokenizer
	}{
		{"codec", config.TokenizerCodec},
		{"estimate", config.TokenizerEstimate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter, err := agentctx.NewTokenCounter(tt.kind, "gpt-4")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if counter.Count("some text to count") <= 0 {
				t.Error("expected positive count")
			}
		})
	}

	if _, err := agentctx.NewTokenCounter("bogus", ""); !stderrors.Is(err, config.ErrUnknownTokenizer) {
		t.Errorf("expected ErrUnknownTokenizer, got %v", err)
	}
}

func TestCountMessages_Overhead(t *testing.T) {
	counter := agentctx.NewEstimatedCounter()
	// "user" 和 "abcdefgh" 各计 1 和 2 个 Token，加上 3 个格式 Token 和 3 个回复引导
	messages := []message.Message{message.NewUserMessage("abcdefgh")}

	if got := counter.CountMessages(messages); got != 9 {
		t.Errorf("CountMessages = %d, want 9", got)
	}
	if got := counter.CountMessages(nil); got != 3 {
		t.Errorf("CountMessages(nil) = %d, want 3", got)
	}
}
