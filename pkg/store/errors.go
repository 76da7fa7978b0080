package store

import "errors"

// Store errors
var (
	// ErrInvalidKey 空键
	ErrInvalidKey = errors.New("invalid cache key")
	// ErrClosed 缓存已关闭
	ErrClosed = errors.New("cache closed")
)
