package llm

// DeepSeek 的 OpenAI 兼容端点和默认模型
const (
	deepSeekBaseURL = "https://api.deepseek.com/v1"
	deepSeekModel   = "deepseek-chat"
)

// NewDeepSeek 创建 DeepSeek 提供商
//
// DeepSeek 提供 OpenAI 兼容的 API，与 NewOpenAI 共用同一个实现，
// 只是默认端点和模型不同。
func NewDeepSeek(opts ...Option) (*CompatProvider, error) {
	return newCompatProvider("deepseek", deepSeekModel, deepSeekBaseURL, opts)
}
