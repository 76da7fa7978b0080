package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/easyops/promptfit/pkg/core/errors"
	"github.com/easyops/promptfit/pkg/core/message"
)

// DefaultMaxAttempts Submit 的默认最大尝试次数
const DefaultMaxAttempts = 10

// Submitter 提交有序消息列表并返回回复文本
type Submitter interface {
	Submit(ctx context.Context, msgs []message.Message) (string, error)
}

// Client 带有限次重试的远程调用客户端
//
// Client 除配置外只持有用量累计，可在多个 Prompt 之间并发共享，
// 最终提交和摘要压缩都通过同一个 Client 完成。
type Client struct {
	provider    Provider
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
	requestOpts []RequestOption

	mu    sync.Mutex
	usage message.TokenUsage
}

// NewClient 创建远程调用客户端
func NewClient(provider Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:    provider,
		maxAttempts: DefaultMaxAttempts,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Provider 返回底层提供商
func (c *Client) Provider() Provider {
	return c.provider
}

// MaxAttempts 返回最大尝试次数
func (c *Client) MaxAttempts() int {
	return c.maxAttempts
}

// Submit 提交消息列表，失败时立即重试，直到成功或尝试次数耗尽
//
// 任何失败（网络、服务端错误、响应格式错误）都会重试，每次重试输出一条警告日志。
// 角色无效的消息在发送前被拒绝，不计入尝试次数。
// 尝试次数耗尽后返回 *errors.RemoteCallError，其中包含最后一次的错误。
func (c *Client) Submit(ctx context.Context, msgs []message.Message) (string, error) {
	for i := range msgs {
		if err := msgs[i].Validate(); err != nil {
			return "", fmt.Errorf("message %d: %w", i, err)
		}
	}

	req := Request{Messages: msgs}
	for _, opt := range c.requestOpts {
		opt(&req)
	}

	retrier := &Retrier{
		MaxAttempts: c.maxAttempts,
		BaseDelay:   c.retryDelay,
		OnRetry: func(attempt int, err error) {
			c.logger.Warn("request to LLM failed, retrying",
				"provider", c.provider.Name(),
				"attempt", attempt,
				"max_attempts", c.maxAttempts,
				"retryable", errors.IsRetryable(err),
				"error", err,
			)
		},
	}

	var content string
	attempts, err := retrier.Do(ctx, func(int) error {
		resp, err := c.provider.Generate(ctx, req)
		if err != nil {
			return err
		}
		content = resp.Content
		c.addUsage(resp.TokenUsage)
		return nil
	})
	if err != nil {
		return "", &errors.RemoteCallError{Attempts: attempts, Err: err}
	}

	return content, nil
}

// Usage 返回所有成功调用累计的 Token 用量
func (c *Client) Usage() message.TokenUsage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

func (c *Client) addUsage(u message.TokenUsage) {
	c.mu.Lock()
	c.usage.Add(u)
	c.mu.Unlock()
}

// compile-time interface check
var _ Submitter = (*Client)(nil)
