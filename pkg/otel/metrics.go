package otel

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics 按名称返回仪器，同名总是返回同一个
type Metrics interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
	Gauge(name string) Gauge
}

type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attr)
}

type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attr)
}

// Gauge 只保留最后一次设置的值
type Gauge interface {
	Set(ctx context.Context, value float64, attrs ...Attr)
}

// Attr 测量属性，Value 为 string、int、int64、float64 或 bool，其他类型按 %v 转为字符串
type Attr struct {
	Key   string
	Value any
}

func NewAttr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func (a Attr) toAttribute() attribute.KeyValue {
	switch v := a.Value.(type) {
	case string:
		return attribute.String(a.Key, v)
	case int:
		return attribute.Int(a.Key, v)
	case int64:
		return attribute.Int64(a.Key, v)
	case float64:
		return attribute.Float64(a.Key, v)
	case bool:
		return attribute.Bool(a.Key, v)
	default:
		return attribute.String(a.Key, fmt.Sprint(v))
	}
}

func measurementOption(attrs []Attr) metric.MeasurementOption {
	kvs := make([]attribute.KeyValue, len(attrs))
	for i, a := range attrs {
		kvs[i] = a.toAttribute()
	}
	return metric.WithAttributes(kvs...)
}

// OTelMetrics 基于 OpenTelemetry Meter 的指标实现
//
// 仪器按名称懒创建并缓存，预定义指标自动带上描述和单位。
// 创建失败时退化为空实现。
type OTelMetrics struct {
	meter metric.Meter

	mu          sync.Mutex
	instruments map[string]any
}

func NewOTelMetrics(meter metric.Meter) *OTelMetrics {
	return &OTelMetrics{meter: meter, instruments: make(map[string]any)}
}

// cached 返回 name 已创建的仪器；同名但类型不同时重新创建并覆盖
func cached[T any](m *OTelMetrics, name string, fallback T, create func(desc, unit string) (T, error)) T {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.instruments[name].(T); ok {
		return v
	}
	var desc, unit string
	if d, ok := describe(name); ok {
		desc, unit = d.Description, string(d.Unit)
	}
	v, err := create(desc, unit)
	if err != nil {
		v = fallback
	}
	m.instruments[name] = v
	return v
}

func (m *OTelMetrics) Counter(name string) Counter {
	return cached[Counter](m, name, noopInstrument{}, func(desc, unit string) (Counter, error) {
		c, err := m.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		return otelCounter{c}, err
	})
}

func (m *OTelMetrics) Histogram(name string) Histogram {
	return cached[Histogram](m, name, noopInstrument{}, func(desc, unit string) (Histogram, error) {
		h, err := m.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit(unit))
		return otelHistogram{h}, err
	})
}

func (m *OTelMetrics) Gauge(name string) Gauge {
	return cached[Gauge](m, name, noopInstrument{}, func(desc, unit string) (Gauge, error) {
		g, err := m.meter.Float64Gauge(name, metric.WithDescription(desc), metric.WithUnit(unit))
		return otelGauge{g}, err
	})
}

type otelCounter struct{ counter metric.Int64Counter }

func (c otelCounter) Add(ctx context.Context, value int64, attrs ...Attr) {
	c.counter.Add(ctx, value, measurementOption(attrs))
}

type otelHistogram struct{ histogram metric.Float64Histogram }

func (h otelHistogram) Record(ctx context.Context, value float64, attrs ...Attr) {
	h.histogram.Record(ctx, value, measurementOption(attrs))
}

type otelGauge struct{ gauge metric.Float64Gauge }

func (g otelGauge) Set(ctx context.Context, value float64, attrs ...Attr) {
	g.gauge.Record(ctx, value, measurementOption(attrs))
}

// InMemoryMetrics 把指标保存在进程内存中，供测试读取
type InMemoryMetrics struct {
	mu         sync.Mutex
	counters   map[string]*memCounter
	histograms map[string]*memHistogram
	gauges     map[string]*memGauge
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters:   make(map[string]*memCounter),
		histograms: make(map[string]*memHistogram),
		gauges:     make(map[string]*memGauge),
	}
}

// instrument 返回 name 对应的仪器，不存在时创建；调用方持有 mu
func instrument[T any](instruments map[string]*T, name string) *T {
	if v, ok := instruments[name]; ok {
		return v
	}
	v := new(T)
	instruments[name] = v
	return v
}

func (m *InMemoryMetrics) Counter(name string) Counter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return instrument(m.counters, name)
}

func (m *InMemoryMetrics) Histogram(name string) Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()
	return instrument(m.histograms, name)
}

func (m *InMemoryMetrics) Gauge(name string) Gauge {
	m.mu.Lock()
	defer m.mu.Unlock()
	return instrument(m.gauges, name)
}

// GetCounterValue 未记录过时返回 0
func (m *InMemoryMetrics) GetCounterValue(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return instrument(m.counters, name).value.Load()
}

// GetHistogramValues 按记录顺序返回副本
func (m *InMemoryMetrics) GetHistogramValues(name string) []float64 {
	m.mu.Lock()
	h := instrument(m.histograms, name)
	m.mu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.values)
}

// GetGaugeValue 返回最后一次设置的值
func (m *InMemoryMetrics) GetGaugeValue(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return math.Float64frombits(instrument(m.gauges, name).bits.Load())
}

type memCounter struct{ value atomic.Int64 }

func (c *memCounter) Add(_ context.Context, value int64, _ ...Attr) { c.value.Add(value) }

type memHistogram struct {
	mu     sync.Mutex
	values []float64
}

func (h *memHistogram) Record(_ context.Context, value float64, _ ...Attr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.values = append(h.values, value)
}

type memGauge struct{ bits atomic.Uint64 }

func (g *memGauge) Set(_ context.Context, value float64, _ ...Attr) {
	g.bits.Store(math.Float64bits(value))
}

// NoopMetrics 丢弃所有测量
type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics { return &NoopMetrics{} }

func (*NoopMetrics) Counter(string) Counter     { return noopInstrument{} }
func (*NoopMetrics) Histogram(string) Histogram { return noopInstrument{} }
func (*NoopMetrics) Gauge(string) Gauge         { return noopInstrument{} }

type noopInstrument struct{}

func (noopInstrument) Add(context.Context, int64, ...Attr)      {}
func (noopInstrument) Record(context.Context, float64, ...Attr) {}
func (noopInstrument) Set(context.Context, float64, ...Attr)    {}

var (
	_ Metrics = (*InMemoryMetrics)(nil)
	_ Metrics = (*NoopMetrics)(nil)
	_ Metrics = (*OTelMetrics)(nil)
)
