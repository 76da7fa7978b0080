package otel

import "go.opentelemetry.io/otel/attribute"

// 预定义的语义属性键
// 遵循 OpenTelemetry 语义约定
const (
	// Prompt 相关属性
	AttrPromptDispatchID   = "prompt.dispatch_id"
	AttrPromptTokenLimit   = "prompt.token_limit"
	AttrPromptTokens       = "prompt.tokens"
	AttrPromptMessages     = "prompt.messages"
	AttrPromptShrinkRounds = "prompt.shrink_rounds"

	// LLM 相关属性
	AttrLLMProvider         = "llm.provider"
	AttrLLMModel            = "llm.model"
	AttrLLMPromptTokens     = "llm.prompt_tokens"
	AttrLLMCompletionTokens = "llm.completion_tokens"
	AttrLLMTotalTokens      = "llm.total_tokens"

	// Error 相关属性
	AttrErrorType      = "error.type"
	AttrErrorMessage   = "error.message"
	AttrErrorRetryable = "error.retryable"
)

// PromptDispatchID 创建 Dispatch ID 属性
func PromptDispatchID(id string) attribute.KeyValue {
	return attribute.String(AttrPromptDispatchID, id)
}

// PromptTokenLimit 创建 Token 预算属性
func PromptTokenLimit(limit int) attribute.KeyValue {
	return attribute.Int(AttrPromptTokenLimit, limit)
}

// PromptTokens 创建 Token 数量属性
func PromptTokens(tokens int) attribute.KeyValue {
	return attribute.Int(AttrPromptTokens, tokens)
}

// PromptMessages 创建消息数量属性
func PromptMessages(n int) attribute.KeyValue {
	return attribute.Int(AttrPromptMessages, n)
}

// PromptShrinkRounds 创建压缩轮数属性
func PromptShrinkRounds(n int) attribute.KeyValue {
	return attribute.Int(AttrPromptShrinkRounds, n)
}

// LLMProvider 创建 LLM 提供商属性
func LLMProvider(provider string) attribute.KeyValue {
	return attribute.String(AttrLLMProvider, provider)
}

// LLMModel 创建 LLM 模型属性
func LLMModel(model string) attribute.KeyValue {
	return attribute.String(AttrLLMModel, model)
}

// LLMTokens 创建 LLM Token 使用属性
func LLMTokens(prompt, completion, total int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrLLMPromptTokens, prompt),
		attribute.Int(AttrLLMCompletionTokens, completion),
		attribute.Int(AttrLLMTotalTokens, total),
	}
}

// ErrorAttrs 创建错误属性
func ErrorAttrs(errType, message string, retryable bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrErrorType, errType),
		attribute.String(AttrErrorMessage, message),
		attribute.Bool(AttrErrorRetryable, retryable),
	}
}
