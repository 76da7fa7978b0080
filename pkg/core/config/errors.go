package config

import "errors"

// 配置验证相关错误
var (
	// ErrUnknownProvider 未知的服务名称
	ErrUnknownProvider = errors.New("unknown llm provider")
	// ErrModelRequired 模型名称必填
	ErrModelRequired = errors.New("model name is required")
	// ErrInvalidTimeout 超时时间无效
	ErrInvalidTimeout = errors.New("invalid timeout value")
	// ErrInvalidMaxAttempts 尝试次数无效
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
	// ErrInvalidRetryDelay 重试间隔无效
	ErrInvalidRetryDelay = errors.New("retry delay must not be negative")
	// ErrInvalidTemperature 采样温度超出 [0, 2]
	ErrInvalidTemperature = errors.New("temperature must be within [0, 2]")
	// ErrInvalidTokenLimit Token 预算无效
	ErrInvalidTokenLimit = errors.New("token limit must be positive")
	// ErrUnknownTokenizer 未知的分词器
	ErrUnknownTokenizer = errors.New("unknown tokenizer")
	// ErrCachePathRequired 启用缓存时必须指定路径
	ErrCachePathRequired = errors.New("cache path is required when cache is enabled")
	// ErrUnsupportedFormat 不支持的配置文件格式
	ErrUnsupportedFormat = errors.New("unsupported config file format")
)
