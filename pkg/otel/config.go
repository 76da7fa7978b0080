package otel

import (
	"io"
	"time"

	"github.com/easyops/promptfit/pkg/core/config"
)

// Config 可观测性配置
type Config struct {
	// Enabled 为 false 时只保留日志
	Enabled        bool   `koanf:"enabled"`
	ServiceName    string `koanf:"service_name"`
	ServiceVersion string `koanf:"service_version"`
	Environment    string `koanf:"environment"`

	Tracing TracingConfig `koanf:"tracing"`
	Metrics MetricsConfig `koanf:"metrics"`
	Logging LoggingConfig `koanf:"logging"`
}

// ExportSettings 追踪和指标共用的导出设置
type ExportSettings struct {
	Exporter ExporterType      `koanf:"exporter"`
	Endpoint string            `koanf:"endpoint"`
	Insecure bool              `koanf:"insecure"`
	Headers  map[string]string `koanf:"headers"`
	Gzip     bool              `koanf:"gzip"`
	// Timeout 单次导出超时，0 使用 SDK 默认值
	Timeout time.Duration `koanf:"timeout"`
}

type TracingConfig struct {
	Enabled        bool `koanf:"enabled"`
	ExportSettings `koanf:",squash"`
	// SampleRate [0, 1]，有父 Span 时跟随父 Span 的决定
	SampleRate float64 `koanf:"sample_rate"`
}

type MetricsConfig struct {
	Enabled        bool `koanf:"enabled"`
	ExportSettings `koanf:",squash"`
	// Interval 周期读取器的导出间隔
	Interval time.Duration `koanf:"interval"`
}

type LoggingConfig struct {
	// Level debug | info | warn | error
	Level string `koanf:"level"`
	// Format text | json
	Format string `koanf:"format"`
	// IncludeTraceID 为 true 时 WithContext 附加 trace_id 和 span_id
	IncludeTraceID bool `koanf:"include_trace_id"`
}

var defaultExport = ExportSettings{
	Exporter: ExporterOTLPGRPC,
	Endpoint: "localhost:4317",
	Insecure: true,
	Timeout:  30 * time.Second,
}

// DefaultConfig 默认关闭追踪和指标，导出到本机 OTLP gRPC
func DefaultConfig() Config {
	return Config{
		ServiceName:    "promptfit",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		Tracing:        TracingConfig{ExportSettings: defaultExport, SampleRate: 1.0},
		Metrics:        MetricsConfig{ExportSettings: defaultExport, Interval: 60 * time.Second},
		Logging:        LoggingConfig{Level: "info", Format: "text", IncludeTraceID: true},
	}
}

// FromObservabilityConfig 将全局配置中的可观测性配置转换为 Config
//
// 启用时追踪和指标共用同一个导出器类型。
func FromObservabilityConfig(oc config.ObservabilityConfig) Config {
	cfg := DefaultConfig()
	cfg.Enabled = oc.Enabled
	cfg.ServiceName = or(oc.ServiceName, cfg.ServiceName)

	exporter := or(ExporterType(oc.Exporter), ExporterStdout)

	cfg.Tracing.Enabled = oc.Enabled
	cfg.Tracing.Exporter = exporter
	cfg.Tracing.Endpoint = or(oc.TracerEndpoint, cfg.Tracing.Endpoint)
	cfg.Tracing.SampleRate = oc.SampleRate

	cfg.Metrics.Enabled = oc.Enabled
	cfg.Metrics.Exporter = exporter
	cfg.Metrics.Endpoint = or(oc.MetricsEndpoint, cfg.Metrics.Endpoint)

	cfg.Logging.Level = or(oc.LogLevel, cfg.Logging.Level)
	cfg.Logging.Format = or(oc.LogFormat, cfg.Logging.Format)
	return cfg
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return ErrInvalidSampleRate
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// WithDefaults 填充为空的字段，布尔值保持不变
func (c Config) WithDefaults() Config {
	d := DefaultConfig()

	c.ServiceName = or(c.ServiceName, d.ServiceName)
	c.ServiceVersion = or(c.ServiceVersion, d.ServiceVersion)
	c.Environment = or(c.Environment, d.Environment)

	c.Tracing.ExportSettings = c.Tracing.withDefaults()
	c.Tracing.SampleRate = or(c.Tracing.SampleRate, d.Tracing.SampleRate)
	c.Metrics.ExportSettings = c.Metrics.withDefaults()
	c.Metrics.Interval = or(c.Metrics.Interval, d.Metrics.Interval)

	c.Logging.Level = or(c.Logging.Level, d.Logging.Level)
	c.Logging.Format = or(c.Logging.Format, d.Logging.Format)
	return c
}

func (s ExportSettings) withDefaults() ExportSettings {
	s.Exporter = or(s.Exporter, defaultExport.Exporter)
	s.Endpoint = or(s.Endpoint, defaultExport.Endpoint)
	s.Timeout = or(s.Timeout, defaultExport.Timeout)
	return s
}

// or 返回第一个非零值
func or[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}

// exporterConfig w 为 stdout 导出器的输出
func (s ExportSettings) exporterConfig(w io.Writer) ExporterConfig {
	return ExporterConfig{
		Type:     s.Exporter,
		Endpoint: s.Endpoint,
		Insecure: s.Insecure,
		Headers:  s.Headers,
		Timeout:  s.Timeout,
		Gzip:     s.Gzip,
		Writer:   w,
	}
}
