package llm

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/easyops/promptfit/pkg/core/errors"
)

// RetryFunc 可重试的函数类型，attempt 从 1 开始
type RetryFunc func(attempt int) error

// Retrier 按尝试次数计数的重试器
//
// 与按"重试次数"计数不同，MaxAttempts 包含首次调用：
// MaxAttempts=10 最多调用 fn 十次。
type Retrier struct {
	// MaxAttempts 最大尝试次数，小于 1 时按 1 处理
	MaxAttempts int
	// BaseDelay 重试间隔基数，0 表示立即重试
	BaseDelay time.Duration
	// ShouldRetry 判断错误是否可重试，nil 表示所有错误都重试
	ShouldRetry func(err error) bool
	// OnRetry 每次决定重试前调用
	OnRetry func(attempt int, err error)
}

// Do 执行 fn 直到成功或尝试次数耗尽
//
// 返回值:
//   - attempts: 实际调用 fn 的次数
//   - error: 最后一次失败的错误；上下文取消时为 ErrContextCanceled
func (r *Retrier) Do(ctx context.Context, fn RetryFunc) (int, error) {
	maxAttempts := r.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	attempt := 0

	for attempt < maxAttempts {
		// 检查上下文是否取消
		select {
		case <-ctx.Done():
			return attempt, canceled(ctx)
		default:
		}

		attempt++
		err := fn(attempt)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		if r.ShouldRetry != nil && !r.ShouldRetry(err) {
			return attempt, err
		}
		if attempt >= maxAttempts {
			break
		}

		if r.OnRetry != nil {
			r.OnRetry(attempt, err)
		}

		if r.BaseDelay > 0 {
			select {
			case <-ctx.Done():
				return attempt, canceled(ctx)
			case <-time.After(calculateBackoff(attempt-1, r.BaseDelay)):
			}
		}
	}

	return attempt, lastErr
}

// calculateBackoff 计算指数退避时间
// 使用公式: baseDelay * 2^attempt + 10% 抖动
// 最大延迟限制为 30 秒
func calculateBackoff(attempt int, baseDelay time.Duration) time.Duration {
	// 指数增长
	exp := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(baseDelay) * exp)

	// 添加 10% 的抖动
	jitter := time.Duration(float64(delay) * 0.1)
	delay += jitter

	// 限制最大延迟
	maxDelay := 30 * time.Second
	if delay > maxDelay {
		delay = maxDelay
	}

	return delay
}

// canceled 同时保留框架错误与原始的上下文错误
func canceled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", errors.ErrContextCanceled, ctx.Err())
}
