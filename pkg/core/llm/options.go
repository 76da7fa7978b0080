package llm

import (
	"log/slog"
	"time"
)

const defaultRequestTimeout = 60 * time.Second

// Option 配置 CompatProvider
type Option func(*providerOptions)

type providerOptions struct {
	apiKey  string
	baseURL string
	model   string
	// timeout 作用于单次 HTTP 请求，不跨越 Client 的重试
	timeout time.Duration
	// temperature 为 nil 时由服务端决定
	temperature *float64
}

func WithAPIKey(key string) Option {
	return func(o *providerOptions) { o.apiKey = key }
}

// WithBaseURL 覆盖服务的默认端点
func WithBaseURL(url string) Option {
	return func(o *providerOptions) { o.baseURL = url }
}

func WithModel(model string) Option {
	return func(o *providerOptions) { o.model = model }
}

// WithTimeout 设置单次请求超时，0 表示不限制
func WithTimeout(d time.Duration) Option {
	return func(o *providerOptions) { o.timeout = d }
}

// WithTemperature 设置默认采样温度，请求中的值优先
func WithTemperature(t float64) Option {
	return func(o *providerOptions) { o.temperature = &t }
}

// RequestOption 修改 Client 发出的每个请求
type RequestOption func(*Request)

func WithRequestTemperature(t float64) RequestOption {
	return func(r *Request) { r.Temperature = &t }
}

// WithRequestMaxTokens 限制回复长度
func WithRequestMaxTokens(n int) RequestOption {
	return func(r *Request) { r.MaxTokens = &n }
}

// ClientOption 配置 Client
type ClientOption func(*Client)

// WithMaxAttempts 设置一次 Submit 的总尝试次数，含首次
func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) { c.maxAttempts = n }
}

// WithRetryDelay 设置退避基数，0 表示立即重试
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.retryDelay = d }
}

// WithLogger 设置重试提示的输出位置
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

func WithRequestOptions(opts ...RequestOption) ClientOption {
	return func(c *Client) { c.requestOpts = append(c.requestOpts, opts...) }
}
