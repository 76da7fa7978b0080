package otel

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ExporterType 导出器类型
type ExporterType string

const (
	// ExporterOTLPGRPC OTLP gRPC 导出器
	ExporterOTLPGRPC ExporterType = "otlp-grpc"
	// ExporterOTLPHTTP OTLP HTTP 导出器
	ExporterOTLPHTTP ExporterType = "otlp-http"
	// ExporterStdout 以 JSON 写到 Writer（默认 stdout），用于本地调试
	ExporterStdout ExporterType = "stdout"
	// ExporterNone 丢弃所有数据，Span 和指标仍会被创建
	ExporterNone ExporterType = "none"
)

// ExporterConfig 单个信号（追踪或指标）的导出器配置
type ExporterConfig struct {
	Type     ExporterType
	Endpoint string
	Insecure bool
	Headers  map[string]string
	// Timeout 单次导出超时，0 使用 SDK 默认值
	Timeout time.Duration
	// Gzip 是否压缩 OTLP 请求
	Gzip bool
	// Writer stdout 导出器的输出位置
	Writer io.Writer
}

func (c ExporterConfig) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// CreateTraceExporter 按类型创建追踪导出器
func CreateTraceExporter(ctx context.Context, cfg ExporterConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Type {
	case ExporterOTLPGRPC:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts,
				otlptracegrpc.WithInsecure(),
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			)
		}
		if cfg.Timeout > 0 {
			opts = append(opts, otlptracegrpc.WithTimeout(cfg.Timeout))
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
		}
		if cfg.Gzip {
			opts = append(opts, otlptracegrpc.WithCompressor("gzip"))
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))

	case ExporterOTLPHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if cfg.Timeout > 0 {
			opts = append(opts, otlptracehttp.WithTimeout(cfg.Timeout))
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		if cfg.Gzip {
			opts = append(opts, otlptracehttp.WithCompression(otlptracehttp.GzipCompression))
		}
		return otlptracehttp.New(ctx, opts...)

	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithWriter(cfg.writer()))

	case ExporterNone:
		return discardSpanExporter{}, nil

	default:
		return nil, fmt.Errorf("unsupported trace exporter type: %q", cfg.Type)
	}
}

// CreateMetricExporter 按类型创建指标导出器
func CreateMetricExporter(ctx context.Context, cfg ExporterConfig) (sdkmetric.Exporter, error) {
	switch cfg.Type {
	case ExporterOTLPGRPC:
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts,
				otlpmetricgrpc.WithInsecure(),
				otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			)
		}
		if cfg.Timeout > 0 {
			opts = append(opts, otlpmetricgrpc.WithTimeout(cfg.Timeout))
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
		}
		if cfg.Gzip {
			opts = append(opts, otlpmetricgrpc.WithCompressor("gzip"))
		}
		return otlpmetricgrpc.New(ctx, opts...)

	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		if cfg.Timeout > 0 {
			opts = append(opts, otlpmetrichttp.WithTimeout(cfg.Timeout))
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}
		if cfg.Gzip {
			opts = append(opts, otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression))
		}
		return otlpmetrichttp.New(ctx, opts...)

	case ExporterStdout:
		return stdoutmetric.New(stdoutmetric.WithWriter(cfg.writer()))

	case ExporterNone:
		return discardMetricExporter{}, nil

	default:
		return nil, fmt.Errorf("unsupported metric exporter type: %q", cfg.Type)
	}
}

// discardSpanExporter 丢弃所有 Span
type discardSpanExporter struct{}

func (discardSpanExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }
func (discardSpanExporter) Shutdown(context.Context) error                             { return nil }

// discardMetricExporter 丢弃所有指标，聚合方式沿用 SDK 默认值
type discardMetricExporter struct{}

func (discardMetricExporter) Temporality(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(kind)
}

func (discardMetricExporter) Aggregation(kind sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(kind)
}

func (discardMetricExporter) Export(context.Context, *metricdata.ResourceMetrics) error { return nil }
func (discardMetricExporter) ForceFlush(context.Context) error                          { return nil }
func (discardMetricExporter) Shutdown(context.Context) error                            { return nil }
