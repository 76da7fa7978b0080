package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteCache SQLite 摘要缓存
//
// 基于 SQLite 的持久化缓存，可以在多次运行之间复用摘要。
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache 创建 SQLite 摘要缓存
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// ":memory:" 数据库按连接隔离
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cache := &SQLiteCache{db: db}

	if err := cache.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return cache, nil
}

// initSchema 初始化表结构
func (c *SQLiteCache) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS summaries (
		key TEXT PRIMARY KEY,
		summary TEXT NOT NULL,
		hits INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	_, err := c.db.Exec(query)
	return err
}

// Get 读取摘要并递增命中次数
func (c *SQLiteCache) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}

	query := `SELECT summary FROM summaries WHERE key = ?`

	var summary string
	err := c.db.QueryRowContext(ctx, query, key).Scan(&summary)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if _, err := c.db.ExecContext(ctx, `UPDATE summaries SET hits = hits + 1 WHERE key = ?`, key); err != nil {
		return "", false, err
	}

	return summary, true, nil
}

// Put 写入摘要
func (c *SQLiteCache) Put(ctx context.Context, key string, summary string) error {
	if key == "" {
		return ErrInvalidKey
	}

	now := time.Now().UnixMilli()

	query := `
	INSERT INTO summaries (key, summary, hits, created_at, updated_at)
	VALUES (?, ?, 0, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		summary = excluded.summary,
		updated_at = excluded.updated_at
	`

	_, err := c.db.ExecContext(ctx, query, key, summary, now, now)
	return err
}

// Entry 读取完整条目，不影响命中次数
func (c *SQLiteCache) Entry(ctx context.Context, key string) (Entry, bool, error) {
	query := `SELECT key, summary, hits, created_at, updated_at FROM summaries WHERE key = ?`

	var entry Entry
	var createdAt, updatedAt int64

	err := c.db.QueryRowContext(ctx, query, key).Scan(
		&entry.Key, &entry.Summary, &entry.Hits, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	entry.CreatedAt = time.UnixMilli(createdAt)
	entry.UpdatedAt = time.UnixMilli(updatedAt)

	return entry, true, nil
}

// Count 返回条目数量
func (c *SQLiteCache) Count(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM summaries`).Scan(&count)
	return count, err
}

// Clear 清空缓存
func (c *SQLiteCache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM summaries`)
	return err
}

// Close 关闭连接
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Compile-time interface check
var _ SummaryCache = (*SQLiteCache)(nil)
