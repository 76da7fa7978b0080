// Package errors 定义框架的通用错误类型
package errors

import (
	"errors"
	"fmt"
)

// 通用错误
var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrContextCanceled 上下文被取消
	ErrContextCanceled = errors.New("context canceled")
)

// LLM 相关错误
var (
	// ErrRateLimited 请求被限速
	ErrRateLimited = errors.New("rate limited")
	// ErrTimeout 请求超时
	ErrTimeout = errors.New("request timeout")
	// ErrInvalidAPIKey API 密钥无效
	ErrInvalidAPIKey = errors.New("invalid API key")
	// ErrModelNotFound 模型未找到
	ErrModelNotFound = errors.New("model not found")
	// ErrProviderUnavailable 提供商不可用
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrInvalidResponse LLM 响应无效
	ErrInvalidResponse = errors.New("invalid LLM response")
	// ErrRemoteCallFailed 重试耗尽后远程调用仍然失败
	ErrRemoteCallFailed = errors.New("remote call failed")
)

// Prompt 相关错误
var (
	// ErrBudgetExhausted 没有可压缩的内容，但仍超出 Token 预算
	ErrBudgetExhausted = errors.New("token budget exhausted")
)

// RemoteCallError 记录重试耗尽后的最后一次失败
type RemoteCallError struct {
	// Attempts 实际尝试次数
	Attempts int
	// Err 最后一次尝试的错误
	Err error
}

// Error 实现 error 接口
func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("remote call failed after %d attempt(s): %v", e.Attempts, e.Err)
}

// Unwrap 返回最后一次尝试的错误
func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrRemoteCallFailed) 成立
func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCallFailed
}

// WrapError 包装错误并添加上下文信息
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// IsRetryable 判断错误是否属于临时性故障
//
// 仅用于日志和指标标注；Client 对所有失败都会重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrProviderUnavailable)
}

// IsFatal 判断错误是否为致命错误（不可恢复）
//
// 上下文取消不属于致命错误，即使它被包装在 RemoteCallError 中。
func IsFatal(err error) bool {
	if err == nil || errors.Is(err, ErrContextCanceled) {
		return false
	}
	return errors.Is(err, ErrInvalidAPIKey) ||
		errors.Is(err, ErrModelNotFound) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrBudgetExhausted) ||
		errors.Is(err, ErrRemoteCallFailed)
}
