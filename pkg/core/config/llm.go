package config

import "time"

// Provider OpenAI 兼容服务的名称
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderDeepSeek Provider = "deepseek"
)

const (
	defaultLLMTimeout  = 60 * time.Second
	maxLLMTimeout      = 5 * time.Minute
	defaultMaxAttempts = 10
)

// defaultModels 未指定模型时各服务使用的模型
var defaultModels = map[Provider]string{
	ProviderOpenAI:   "gpt-3.5-turbo",
	ProviderDeepSeek: "deepseek-chat",
}

// IsValid 是否为已支持的服务
func (p Provider) IsValid() bool {
	_, ok := defaultModels[p]
	return ok
}

// LLMConfig 远程调用配置
type LLMConfig struct {
	Provider Provider `koanf:"provider"`
	Model    string   `koanf:"model"`
	APIKey   string   `koanf:"api_key"`
	// BaseURL 为空时使用服务的官方端点
	BaseURL string `koanf:"base_url"`
	// Timeout 单次尝试的超时，超过 5m 会被截断
	Timeout time.Duration `koanf:"timeout"`
	// MaxAttempts 一次远程调用的总尝试次数，含首次
	MaxAttempts int           `koanf:"max_attempts"`
	RetryDelay  time.Duration `koanf:"retry_delay"`
	// Temperature 为 nil 时由服务端决定
	Temperature *float64 `koanf:"temperature"`
}

// Validate 检查配置，并把过大的超时截断到上限
func (c *LLMConfig) Validate() error {
	switch {
	case !c.Provider.IsValid():
		return ErrUnknownProvider
	case c.Model == "":
		return ErrModelRequired
	case c.Timeout < 0:
		return ErrInvalidTimeout
	case c.MaxAttempts < 1:
		return ErrInvalidMaxAttempts
	case c.RetryDelay < 0:
		return ErrInvalidRetryDelay
	case c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2):
		return ErrInvalidTemperature
	}
	c.Timeout = min(c.Timeout, maxLLMTimeout)
	return nil
}

// WithDefaults 填充未设置的字段
func (c LLMConfig) WithDefaults() LLMConfig {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		c.Model = defaultModels[c.Provider]
	}
	if c.Timeout == 0 {
		c.Timeout = defaultLLMTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	return c
}
