package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore 进程内实现，Redis 不可用时的退化选择，也用于测试
type MemoryStore struct {
	c *gocache.Cache
	// Incr/Expire 是读改写，需要互斥
	mu sync.Mutex
}

// NewMemoryStore 创建进程内存储
func NewMemoryStore() *MemoryStore {
	// 默认过期 30 分钟，清理间隔 10 分钟
	return &MemoryStore{c: gocache.New(30*time.Minute, 10*time.Minute)}
}

func (s *MemoryStore) Get(_ context.Context, key string, dest interface{}) error {
	val, found := s.c.Get(key)
	if !found {
		return ErrCacheMiss
	}
	data, ok := val.([]byte)
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (s *MemoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.c.Set(key, data, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s.c.Delete(key)
	}
	return nil
}

// DeletePattern 只支持前缀通配（"prefix:*"），与实际使用的键模式一致
func (s *MemoryStore) DeletePattern(_ context.Context, pattern string) (int64, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var deleted int64
	for key := range s.c.Items() {
		if strings.HasPrefix(key, prefix) {
			s.c.Delete(key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	expiry := ttl
	if val, exp, found := s.c.GetWithExpiration(key); found {
		if data, ok := val.([]byte); ok {
			_ = json.Unmarshal(data, &count)
		}
		// 与 Redis INCR 一致：后续自增不重置过期时间
		if !exp.IsZero() {
			expiry = time.Until(exp)
		}
	}
	count++

	data, _ := json.Marshal(count)
	s.c.Set(key, data, expiry)
	return count, nil
}

func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if val, found := s.c.Get(key); found {
		s.c.Set(key, val, ttl)
	}
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	_, found := s.c.Get(key)
	return found, nil
}

func (s *MemoryStore) Close() error {
	s.c.Flush()
	return nil
}
