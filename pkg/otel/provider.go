package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Provider 持有进程内的 Tracer、Metrics 和 Logger
//
// 三者在 NewProvider 中确定，之后只读；Shutdown 刷新并关闭已启用的导出器。
type Provider struct {
	config  Config
	tracer  Tracer
	metrics Metrics
	logger  Logger

	mu       sync.Mutex
	shutdown []func(context.Context) error
}

// global 由 SetGlobal 设置，未设置时 Get* 返回空实现
var (
	globalMu sync.RWMutex
	global   *Provider
)

// ProviderOption 配置 Provider
type ProviderOption func(*providerOptions)

type providerOptions struct {
	logOutput    io.Writer
	exportOutput io.Writer
}

// WithLogOutput 设置日志输出，默认 stderr
func WithLogOutput(w io.Writer) ProviderOption {
	return func(o *providerOptions) { o.logOutput = w }
}

// WithExportOutput 设置 stdout 导出器的输出，默认 stdout
func WithExportOutput(w io.Writer) ProviderOption {
	return func(o *providerOptions) { o.exportOutput = w }
}

// NewProvider 按配置构建 Provider
//
// 日志始终启用；追踪和指标只在 Enabled 且对应子配置启用时导出。
func NewProvider(cfg Config, opts ...ProviderOption) (*Provider, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options providerOptions
	for _, opt := range opts {
		opt(&options)
	}

	base, err := NewLoggerFromConfig(cfg.Logging, options.logOutput)
	if err != nil {
		return nil, err
	}
	logger := NewSlogLogger(base)
	logger.traceIDs = cfg.Logging.IncludeTraceID

	p := &Provider{
		config:  cfg,
		tracer:  NewNoopTracer(),
		metrics: NewNoopMetrics(),
		logger:  logger,
	}
	if !cfg.Enabled {
		return p, nil
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentKey.String(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	if cfg.Tracing.Enabled {
		if err := p.initTracing(res, options.exportOutput); err != nil {
			return nil, err
		}
	}
	if cfg.Metrics.Enabled {
		if err := p.initMetrics(res, options.exportOutput); err != nil {
			_ = p.Shutdown(context.Background())
			return nil, err
		}
	}
	return p, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

func (p *Provider) initTracing(res *resource.Resource, w io.Writer) error {
	exporter, err := CreateTraceExporter(context.Background(), p.config.Tracing.exporterConfig(w))
	if err != nil {
		return fmt.Errorf("create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(p.config.Tracing.SampleRate)),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p.shutdown = append(p.shutdown, tp.Shutdown)
	p.tracer = NewTracer(tp.Tracer(p.config.ServiceName))
	return nil
}

func (p *Provider) initMetrics(res *resource.Resource, w io.Writer) error {
	exporter, err := CreateMetricExporter(context.Background(), p.config.Metrics.exporterConfig(w))
	if err != nil {
		return fmt.Errorf("create metric exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(p.config.Metrics.Interval))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)

	p.shutdown = append(p.shutdown, mp.Shutdown)
	p.metrics = NewOTelMetrics(mp.Meter(p.config.ServiceName))
	return nil
}

func (p *Provider) Tracer() Tracer   { return p.tracer }
func (p *Provider) Metrics() Metrics { return p.metrics }
func (p *Provider) Logger() Logger   { return p.logger }

// Slog 返回底层的 slog.Logger，供只接受 *slog.Logger 的组件使用
func (p *Provider) Slog() *slog.Logger {
	if sl, ok := p.logger.(*SlogLogger); ok {
		return sl.Slog()
	}
	return slog.Default()
}

// Shutdown 刷新并关闭导出器，可重复调用
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	fns := p.shutdown
	p.shutdown = nil
	p.mu.Unlock()

	var errs []error
	for _, fn := range fns {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}

// SetGlobal 设置 Get* 返回的全局 Provider
func SetGlobal(p *Provider) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = p
}

func current() *Provider {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// GetTracer 返回全局追踪器
func GetTracer() Tracer {
	if p := current(); p != nil {
		return p.Tracer()
	}
	return NewNoopTracer()
}

// GetMetrics 返回全局指标收集器
func GetMetrics() Metrics {
	if p := current(); p != nil {
		return p.Metrics()
	}
	return NewNoopMetrics()
}

// GetLogger 返回全局日志器
func GetLogger() Logger {
	if p := current(); p != nil {
		return p.Logger()
	}
	return NewNoopLogger()
}
