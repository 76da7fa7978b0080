package llm

import (
	"fmt"
	"log/slog"

	"github.com/easyops/promptfit/pkg/core/config"
	"github.com/easyops/promptfit/pkg/core/errors"
)

// FromConfig 从配置创建 LLM Provider
func FromConfig(cfg config.LLMConfig) (Provider, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}

	opts := []Option{
		WithModel(cfg.Model),
		WithTimeout(cfg.Timeout),
	}
	if cfg.APIKey != "" {
		opts = append(opts, WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.Temperature != nil {
		opts = append(opts, WithTemperature(*cfg.Temperature))
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(opts...)
	case config.ProviderDeepSeek:
		return NewDeepSeek(opts...)
	default:
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, config.ErrUnknownProvider)
	}
}

// ClientFromConfig 从配置创建带重试的 Client
//
// provider 为 nil 时由 FromConfig 创建；传入非 nil 值可以先包装（例如追踪）再交给 Client。
func ClientFromConfig(cfg config.LLMConfig, provider Provider, logger *slog.Logger) (*Client, error) {
	cfg = cfg.WithDefaults()

	if provider == nil {
		var err error
		provider, err = FromConfig(cfg)
		if err != nil {
			return nil, err
		}
	}

	return NewClient(provider,
		WithMaxAttempts(cfg.MaxAttempts),
		WithRetryDelay(cfg.RetryDelay),
		WithLogger(logger),
	), nil
}
