package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/easyops/promptfit/pkg/core/errors"
	"github.com/easyops/promptfit/pkg/core/message"
	openai "github.com/sashabaranov/go-openai"
)

// CompatProvider 基于 go-openai 的 Provider，适用于所有 OpenAI 兼容的服务
//
// 每次 Generate 只发起一次请求，重试由 Client 负责。
type CompatProvider struct {
	name    string
	client  *openai.Client
	options providerOptions
}

// NewOpenAI 创建 OpenAI 提供商，默认模型 gpt-3.5-turbo
func NewOpenAI(opts ...Option) (*CompatProvider, error) {
	return newCompatProvider("openai", openai.GPT3Dot5Turbo, "", opts)
}

// newCompatProvider 应用默认端点和模型后创建提供商
func newCompatProvider(name, model, baseURL string, opts []Option) (*CompatProvider, error) {
	options := providerOptions{model: model, baseURL: baseURL, timeout: defaultRequestTimeout}
	for _, opt := range opts {
		opt(&options)
	}

	if options.apiKey == "" {
		return nil, errors.ErrInvalidAPIKey
	}

	return &CompatProvider{
		name:    name,
		client:  openai.NewClientWithConfig(newOpenAIConfig(options)),
		options: options,
	}, nil
}

func newOpenAIConfig(options providerOptions) openai.ClientConfig {
	config := openai.DefaultConfig(options.apiKey)
	if options.baseURL != "" {
		config.BaseURL = options.baseURL
	}
	if options.timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: options.timeout}
	}
	return config
}

// Name 返回提供商名称
func (c *CompatProvider) Name() string {
	return c.name
}

// Model 返回当前模型名称
func (c *CompatProvider) Model() string {
	return c.options.model
}

// Close 关闭客户端连接
func (c *CompatProvider) Close() error {
	return nil
}

// Generate 生成响应（非流式，单次尝试）
func (c *CompatProvider) Generate(ctx context.Context, req Request) (Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, buildOpenAIChatRequest(req, c.options))
	if err != nil {
		return Response{}, mapOpenAIError(err)
	}
	return parseOpenAIResponse(resp)
}

// buildOpenAIChatRequest 构建 Chat Completions 请求，请求级参数优先于提供商默认值
func buildOpenAIChatRequest(req Request, options providerOptions) openai.ChatCompletionRequest {
	chatReq := openai.ChatCompletionRequest{
		Model:    options.model,
		Messages: convertMessagesToOpenAI(req.Messages),
	}

	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
	} else if options.temperature != nil {
		chatReq.Temperature = float32(*options.temperature)
	}
	if req.MaxTokens != nil {
		chatReq.MaxTokens = *req.MaxTokens
	}

	if len(req.Stop) > 0 {
		chatReq.Stop = req.Stop
	}

	return chatReq
}

// convertMessagesToOpenAI 按原顺序转换消息
func convertMessagesToOpenAI(msgs []message.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, msg := range msgs {
		result = append(result, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return result
}

// parseOpenAIResponse 解析 OpenAI 响应，只取第一个候选
func parseOpenAIResponse(resp openai.ChatCompletionResponse) (Response, error) {
	if len(resp.Choices) == 0 {
		return Response{}, errors.WrapError(errors.ErrInvalidResponse, "response has no choices")
	}

	usage := message.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	// 部分兼容服务不返回总数
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}

	choice := resp.Choices[0]
	return Response{
		ID:           resp.ID,
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		TokenUsage:   usage,
	}, nil
}

// mapOpenAIError 把 go-openai 的错误映射为框架错误
//
// 映射只影响日志和指标中的分类，Client 对所有错误都会重试。
func mapOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", errors.ErrTimeout, err)
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case stderrors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case stderrors.As(err, &reqErr):
		// 响应体不是 JSON（例如网关返回的 HTML 错误页）
		status = reqErr.HTTPStatusCode
	default:
		return errors.WrapError(err, "openai request failed")
	}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", errors.ErrInvalidAPIKey, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", errors.ErrModelNotFound, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", errors.ErrRateLimited, err)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %w", errors.ErrTimeout, err)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %w", errors.ErrProviderUnavailable, err)
	default:
		return fmt.Errorf("openai error (status %d): %w", status, err)
	}
}

// compile-time interface check
var _ Provider = (*CompatProvider)(nil)
