// Package cache 提供读穿缓存层。底层存储可以是 Redis，也可以在 Redis
// 不可用时退化为进程内存储；所有读写都做了守护，缓存故障不影响请求本身。
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ErrCacheMiss 键不存在
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss 判断是否为缓存未命中
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// Store 键值存储抽象
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePattern 删除匹配模式的所有键（如 "dramas:list:*"）
	DeletePattern(ctx context.Context, pattern string) (int64, error)
	// Incr 自增计数；首次创建时设置过期时间
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Expire 重设已有键的过期时间
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// Cache 读穿缓存，singleflight 防止同键并发击穿
type Cache struct {
	store Store
	sf    singleflight.Group
}

// New 创建缓存层
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Get 守护读：存储故障视为未命中
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	err := c.store.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !IsCacheMiss(err) {
		log.Warn().Err(err).Str("key", key).Msg("缓存读取失败，降级为直连存储")
	}
	return false
}

// Set 守护写：失败只记日志
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := c.store.Set(ctx, key, value, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("缓存写入失败")
	}
}

// Delete 精确失效
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if err := c.store.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("缓存删除失败")
	}
}

// DeletePattern 模式失效（列表类缓存整体删除）
func (c *Cache) DeletePattern(ctx context.Context, pattern string) int64 {
	deleted, err := c.store.DeletePattern(ctx, pattern)
	if err != nil {
		log.Warn().Err(err).Str("pattern", pattern).Msg("缓存模式删除失败")
	}
	return deleted
}

// Incr 计数自增（登录失败计数等）
func (c *Cache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return c.store.Incr(ctx, key, ttl)
}

// Expire 重设键的过期时间，守护写
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) {
	if err := c.store.Expire(ctx, key, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("缓存过期时间重设失败")
	}
}

// Exists 判断键是否存在（令牌黑名单等）
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.store.Exists(ctx, key)
}

// Close 关闭底层存储
func (c *Cache) Close() error {
	return c.store.Close()
}

// Fetch 读穿：命中直接返回，未命中用 loader 回源并回填。
// 同键并发回源由 singleflight 合并为一次。
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		return load()
	})
	if err != nil {
		var zero T
		return zero, err
	}

	result := v.(T)
	c.Set(ctx, key, result, ttl)
	return result, nil
}
