package store

import "github.com/easyops/promptfit/pkg/core/config"

// New 根据配置创建摘要缓存
//
// Path 为空时使用内存存储，否则使用该路径下的 SQLite 数据库。
func New(cfg config.CacheConfig) (SummaryCache, error) {
	if cfg.Path == "" {
		return NewMemoryCache(), nil
	}
	return NewSQLiteCache(cfg.Path)
}

// TypeOf 返回配置对应的存储类型
func TypeOf(cfg config.CacheConfig) Type {
	if cfg.Path == "" {
		return TypeMemory
	}
	return TypeSQLite
}
