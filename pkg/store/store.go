// Package store 提供压缩结果的持久化缓存。
//
// 同一段文本的摘要在多次运行之间可以复用，从而避免重复的模型调用。
// 默认实现使用内存存储，需要跨进程复用时使用 SQLite。
package store

import (
	"context"
	"time"
)

// SummaryCache 摘要缓存接口
type SummaryCache interface {
	// Get 按键读取摘要，未命中时返回 ("", false, nil)
	Get(ctx context.Context, key string) (string, bool, error)

	// Put 写入或覆盖摘要
	Put(ctx context.Context, key string, summary string) error

	// Close 关闭连接
	Close() error
}

// Entry 缓存条目
type Entry struct {
	Key       string    `json:"key"`
	Summary   string    `json:"summary"`
	Hits      int       `json:"hits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Type 存储类型
type Type string

const (
	// TypeMemory 内存存储
	TypeMemory Type = "memory"
	// TypeSQLite SQLite 存储
	TypeSQLite Type = "sqlite"
)
