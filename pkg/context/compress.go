package context

import (
	"context"
	"strings"

	"github.com/easyops/promptfit/pkg/otel"
	"github.com/easyops/promptfit/pkg/store"
	"github.com/google/uuid"
)

// Compactor 将一段文本压缩为更短的文本。
//
// Message.ShrinkOne 每压缩一次可丢弃片段就调用一次 Compact。
// 返回错误时片段保持原样。
type Compactor interface {
	Compact(ctx context.Context, text string) (string, error)
}

// TruncateCompactor 通过截断压缩文本，不调用模型。
//
// 每次保留大约一半的 Token：优先按行截断，只有一行时按词截断，
// 只有一个词时按字符截断。
type TruncateCompactor struct {
	counter TokenCounter
	// Marker 追加在截断后的文本末尾
	Marker string
}

// NewTruncateCompactor 创建 TruncateCompactor。counter 为 nil 时使用 EstimatedCounter。
func NewTruncateCompactor(counter TokenCounter) *TruncateCompactor {
	if counter == nil {
		counter = NewEstimatedCounter()
	}
	return &TruncateCompactor{
		counter: counter,
		Marker:  "...",
	}
}

// Compact 返回大约一半长度的文本。
func (c *TruncateCompactor) Compact(_ context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	target := c.counter.Count(text) / 2

	if lines := strings.Split(text, "\n"); len(lines) > 1 {
		return c.keep(lines, "\n", target), nil
	}
	if words := strings.Fields(text); len(words) > 1 {
		return c.keep(words, " ", target), nil
	}

	runes := []rune(text)
	return string(runes[:len(runes)/2]), nil
}

// keep 从头开始保留 parts 直到达到目标 Token 数，至多保留一半。
func (c *TruncateCompactor) keep(parts []string, sep string, target int) string {
	limit := len(parts) / 2
	result := make([]string, 0, limit)
	used := 0

	for _, part := range parts[:limit] {
		n := c.counter.Count(part + sep)
		if len(result) > 0 && used+n > target {
			break
		}
		result = append(result, part)
		used += n
	}

	return strings.Join(result, sep) + c.Marker
}

// CachedCompactor 在另一个 Compactor 外加一层摘要缓存。
//
// 缓存键由输入文本的 SHA-1 派生。缓存读写失败只记录日志，
// 不影响压缩结果。
type CachedCompactor struct {
	next    Compactor
	cache   store.SummaryCache
	logger  otel.Logger
	metrics otel.Metrics
}

// cacheNamespace 是缓存键的 UUID 命名空间。
var cacheNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("promptfit/summary"))

// CachedCompactorOption 配置 CachedCompactor。
type CachedCompactorOption func(*CachedCompactor)

// WithCacheLogger 设置日志器。
func WithCacheLogger(logger otel.Logger) CachedCompactorOption {
	return func(c *CachedCompactor) {
		c.logger = logger
	}
}

// WithCacheMetrics 设置指标收集器。
func WithCacheMetrics(metrics otel.Metrics) CachedCompactorOption {
	return func(c *CachedCompactor) {
		c.metrics = metrics
	}
}

// NewCachedCompactor 创建 CachedCompactor。
func NewCachedCompactor(next Compactor, cache store.SummaryCache, opts ...CachedCompactorOption) *CachedCompactor {
	c := &CachedCompactor{
		next:    next,
		cache:   cache,
		logger:  otel.GetLogger(),
		metrics: otel.GetMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheKey 返回文本对应的缓存键。
func CacheKey(text string) string {
	return uuid.NewSHA1(cacheNamespace, []byte(text)).String()
}

// Compact 先查缓存，未命中时调用下一层并写回。
func (c *CachedCompactor) Compact(ctx context.Context, text string) (string, error) {
	key := CacheKey(text)
	logger := c.logger.WithContext(ctx)

	summary, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		logger.Warn("summary cache lookup failed", "key", key, "error", err)
	case ok:
		c.metrics.Counter(otel.MetricCacheHits).Add(ctx, 1)
		return summary, nil
	}
	c.metrics.Counter(otel.MetricCacheMisses).Add(ctx, 1)

	summary, err = c.next.Compact(ctx, text)
	if err != nil {
		return "", err
	}

	if err := c.cache.Put(ctx, key, summary); err != nil {
		logger.Warn("summary cache write failed", "key", key, "error", err)
	}
	return summary, nil
}

// 编译时接口检查
var _ Compactor = (*TruncateCompactor)(nil)
var _ Compactor = (*CachedCompactor)(nil)
