package store

import (
	"context"
	"sync"
	"time"
)

// MemoryCache 内存摘要缓存
//
// 基于 map 的简单实现，适用于测试和单次运行。
type MemoryCache struct {
	entries map[string]*Entry
	closed  bool
	mu      sync.RWMutex
}

// NewMemoryCache 创建内存摘要缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*Entry),
	}
}

// Get 读取摘要
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", false, ErrClosed
	}

	entry, exists := c.entries[key]
	if !exists {
		return "", false, nil
	}
	entry.Hits++
	return entry.Summary, true, nil
}

// Put 写入摘要
func (c *MemoryCache) Put(_ context.Context, key string, summary string) error {
	if key == "" {
		return ErrInvalidKey
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	now := time.Now()
	if entry, exists := c.entries[key]; exists {
		entry.Summary = summary
		entry.UpdatedAt = now
		return nil
	}

	c.entries[key] = &Entry{
		Key:       key,
		Summary:   summary,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

// Entry 返回条目副本
func (c *MemoryCache) Entry(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return Entry{}, false
	}
	return *entry, true
}

// Len 返回条目数量
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close 关闭缓存
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Compile-time interface check
var _ SummaryCache = (*MemoryCache)(nil)
