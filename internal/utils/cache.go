package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// LocalCache 进程内 LRU 缓存封装（搜索建议等高频小数据）
type LocalCache[T any] struct {
	storage *lru.Cache[string, CacheItem[T]]
	ttl     time.Duration
}

// NewLocalCache 初始化，size 是最大缓存条数，ttl 是数据有效期
func NewLocalCache[T any](size int, ttl time.Duration) *LocalCache[T] {
	// lru.New 是线程安全的
	c, _ := lru.New[string, CacheItem[T]](size)
	return &LocalCache[T]{
		storage: c,
		ttl:     ttl,
	}
}

// Set 写入（LRU 中 Add 会自动处理更新）
func (c *LocalCache[T]) Set(key string, value T) {
	item := CacheItem[T]{
		Value:     value,
		ExpiredAt: time.Now().Add(c.ttl),
	}
	c.storage.Add(key, item)
}

// Get 读取（带过期检查）
func (c *LocalCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}

	if time.Now().After(item.ExpiredAt) {
		c.storage.Remove(key) // 过期删除
		return zero, false
	}

	return item.Value, true
}

// Delete 删除
func (c *LocalCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

// Clear 清空
func (c *LocalCache[T]) Clear() {
	c.storage.Purge()
}

// Len 当前条数
func (c *LocalCache[T]) Len() int {
	return c.storage.Len()
}
