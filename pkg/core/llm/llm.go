// Package llm 把有序消息列表提交给 OpenAI 兼容的生成服务
//
// Provider 负责单次请求，Client 在其上实现有限次重试，
// 并作为 Submitter 供 Prompt 和 Summarizer 使用。
package llm

import (
	"context"

	"github.com/easyops/promptfit/pkg/core/message"
)

// Provider 单次调用生成服务
type Provider interface {
	// Generate 发送一次请求，只返回第一个候选；不做任何重试
	Generate(ctx context.Context, req Request) (Response, error)
	// Name 返回提供商名称，用于日志和指标
	Name() string
	// Model 返回请求使用的模型
	Model() string
	Close() error
}

// Request 一次生成请求
//
// 为 nil 或空的可选字段使用提供商默认值。
type Request struct {
	Messages    []message.Message
	Temperature *float64
	MaxTokens   *int
	Stop        []string
}

// Response 第一个候选的内容和本次调用的用量
type Response struct {
	ID         string             `json:"id"`
	Content    string             `json:"content"`
	TokenUsage message.TokenUsage `json:"token_usage"`
	// FinishReason 例如 "stop"、"length"、"content_filter"
	FinishReason string `json:"finish_reason"`
}
