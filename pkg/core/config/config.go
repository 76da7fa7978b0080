// Package config 加载 promptfit 的配置
//
// 来源按优先级从低到高为：YAML 文件、PROMPTFIT_ 前缀的环境变量、内置默认值
// （只填充仍为空的字段）。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 环境变量前缀，例如 PROMPTFIT_LLM_API_KEY
const EnvPrefix = "PROMPTFIT_"

// Config 全部配置节
type Config struct {
	LLM           LLMConfig           `koanf:"llm"`
	Prompt        PromptConfig        `koanf:"prompt"`
	Cache         CacheConfig         `koanf:"cache"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ObservabilityConfig 面向用户的可观测性配置，由 otel.FromObservabilityConfig 转换
type ObservabilityConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
	// Exporter otlp-grpc | otlp-http | stdout | none
	Exporter        string  `koanf:"exporter"`
	TracerEndpoint  string  `koanf:"tracer_endpoint"`
	MetricsEndpoint string  `koanf:"metrics_endpoint"`
	SampleRate      float64 `koanf:"sample_rate"`
	// LogLevel debug | info | warn | error
	LogLevel string `koanf:"log_level"`
	// LogFormat text | json
	LogFormat string `koanf:"log_format"`
}

// Loader 把多个来源合并到一棵 koanf 树
type Loader struct {
	k *koanf.Koanf
}

func NewLoader() *Loader {
	return &Loader{k: koanf.New(".")}
}

// LoadFile 合并配置文件，文件不存在时什么也不做
func (l *Loader) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := l.k.Load(rawBytes(data), yamlParser{}); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadEnv 合并带 prefix 的环境变量
func (l *Loader) LoadEnv(prefix string) error {
	return l.k.Load(env.Provider(prefix, ".", func(s string) string {
		return envKey(strings.TrimPrefix(s, prefix))
	}), nil)
}

// envKey LLM_API_KEY -> llm.api_key
//
// 只有第一个下划线分隔配置节，字段名中的下划线保留。
func envKey(s string) string {
	section, field, ok := strings.Cut(strings.ToLower(s), "_")
	if !ok {
		return section
	}
	return section + "." + field
}

func (l *Loader) Unmarshal(cfg *Config) error {
	return l.k.Unmarshal("", cfg)
}

// Load 读取 configPath（可为空）和环境变量，应用默认值并校验
func Load(configPath string) (*Config, error) {
	loader := NewLoader()
	if configPath != "" {
		if err := loader.LoadFile(configPath); err != nil {
			return nil, err
		}
	}
	if err := loader.LoadEnv(EnvPrefix); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 验证全部配置节
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Prompt.Validate(); err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// applyDefaults 应用默认配置值
func applyDefaults(cfg *Config) {
	cfg.LLM = cfg.LLM.WithDefaults()
	cfg.Prompt = cfg.Prompt.WithDefaults()
	if cfg.Prompt.Model == "" {
		cfg.Prompt.Model = cfg.LLM.Model
	}

	// Observability 默认值
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "promptfit"
	}
	if cfg.Observability.SampleRate == 0 {
		cfg.Observability.SampleRate = 1.0
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	if cfg.Observability.LogFormat == "" {
		cfg.Observability.LogFormat = "text"
	}
}
