package context

import (
	"context"

	"github.com/easyops/promptfit/pkg/core/llm"
	"github.com/easyops/promptfit/pkg/core/message"
)

const (
	summarizerSystemPrompt = "you are a helpful assistant who is good at summarizing things while retaining as much detail as possible."
	summarizerUserPrefix   = "shorten the following by summarizing concisely:\n"
)

// Summarizer 通过一次独立的模型调用压缩文本。
//
// 请求固定为两轮：一条 system 指令和一条包含原文的 user 消息。
// 调用经过 Client 的重试逻辑，最终失败原样返回。
type Summarizer struct {
	client llm.Submitter
}

// NewSummarizer 创建 Summarizer。
func NewSummarizer(client llm.Submitter) *Summarizer {
	return &Summarizer{client: client}
}

// SummaryRequest 返回压缩 text 时发送的消息。
func SummaryRequest(text string) []message.Message {
	return []message.Message{
		message.NewSystemMessage(summarizerSystemPrompt),
		message.NewUserMessage(summarizerUserPrefix + text),
	}
}

// Compact 返回模型对 text 的摘要。
func (s *Summarizer) Compact(ctx context.Context, text string) (string, error) {
	return s.client.Submit(ctx, SummaryRequest(text))
}

var _ Compactor = (*Summarizer)(nil)
