package otel

// 预定义的指标名称
// 遵循 OpenTelemetry 语义约定
const (
	// Prompt 指标
	MetricPromptDispatches      = "prompt.dispatches"       // 计数器: Dispatch 次数
	MetricPromptShrinkRounds    = "prompt.shrink_rounds"    // 计数器: 片段压缩次数
	MetricPromptEvictions       = "prompt.evictions"        // 计数器: 片段删除次数
	MetricPromptBudgetExhausted = "prompt.budget_exhausted" // 计数器: 预算无法满足次数
	MetricPromptTokens          = "prompt.tokens"           // 直方图: 提交时的 Token 数
	MetricPromptBudgetUsage     = "prompt.budget_usage"     // 仪表: 最近一次提交占预算的比例

	// LLM 指标
	MetricLLMRequests         = "llm.requests"          // 计数器: LLM 请求次数
	MetricLLMRequestDuration  = "llm.request.duration"  // 直方图: LLM 请求时间(ms)
	MetricLLMTokensPrompt     = "llm.tokens.prompt"     // 计数器: Prompt Token 总数
	MetricLLMTokensCompletion = "llm.tokens.completion" // 计数器: Completion Token 总数
	MetricLLMErrors           = "llm.errors"            // 计数器: LLM 错误次数

	// Cache 指标
	MetricCacheHits   = "cache.hits"   // 计数器: 摘要缓存命中次数
	MetricCacheMisses = "cache.misses" // 计数器: 摘要缓存未命中次数
)

// MetricUnit 指标单位
type MetricUnit string

const (
	UnitNone         MetricUnit = ""
	UnitMilliseconds MetricUnit = "ms"
	UnitCount        MetricUnit = "1"
	UnitTokens       MetricUnit = "{token}"
)

// MetricDescription 指标描述
type MetricDescription struct {
	Name        string
	Description string
	Unit        MetricUnit
	Type        string // counter, histogram, gauge
}

// PredefinedMetrics 预定义指标列表
var PredefinedMetrics = []MetricDescription{
	{MetricPromptDispatches, "Number of prompt dispatches", UnitCount, "counter"},
	{MetricPromptShrinkRounds, "Number of fragment compactions", UnitCount, "counter"},
	{MetricPromptEvictions, "Number of evicted fragments", UnitCount, "counter"},
	{MetricPromptBudgetExhausted, "Number of prompts that could not fit the token limit", UnitCount, "counter"},
	{MetricPromptTokens, "Prompt size at submission", UnitTokens, "histogram"},
	{MetricPromptBudgetUsage, "Share of the token limit used by the last submitted prompt", UnitNone, "gauge"},

	{MetricLLMRequests, "Number of LLM requests", UnitCount, "counter"},
	{MetricLLMRequestDuration, "Duration of LLM requests", UnitMilliseconds, "histogram"},
	{MetricLLMTokensPrompt, "Number of prompt tokens", UnitTokens, "counter"},
	{MetricLLMTokensCompletion, "Number of completion tokens", UnitTokens, "counter"},
	{MetricLLMErrors, "Number of LLM errors", UnitCount, "counter"},

	{MetricCacheHits, "Number of summary cache hits", UnitCount, "counter"},
	{MetricCacheMisses, "Number of summary cache misses", UnitCount, "counter"},
}

// describe 查找预定义指标描述
func describe(name string) (MetricDescription, bool) {
	for _, d := range PredefinedMetrics {
		if d.Name == name {
			return d, true
		}
	}
	return MetricDescription{}, false
}
