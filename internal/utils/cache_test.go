package utils

import (
	"testing"
	"time"
)

func TestLocalCacheSetGet(t *testing.T) {
	c := NewLocalCache[string](10, time.Minute)

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("期望命中 v，实际 %q %v", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("不存在的键不应命中")
	}
}

func TestLocalCacheExpiry(t *testing.T) {
	c := NewLocalCache[int](10, 10*time.Millisecond)

	c.Set("k", 42)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("过期数据不应命中")
	}
	if c.Len() != 0 {
		t.Errorf("过期键应被摘除，剩余 %d", c.Len())
	}
}

func TestLocalCacheEviction(t *testing.T) {
	c := NewLocalCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3) // 挤掉最久未用的 a

	if _, ok := c.Get("a"); ok {
		t.Error("超出容量时最久未用的键应被淘汰")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("新写入的键应保留")
	}
}

func TestHashIPStable(t *testing.T) {
	a := HashIP("203.0.113.7")
	b := HashIP("203.0.113.7")
	if a != b {
		t.Error("同 IP 哈希应稳定")
	}
	if a == HashIP("203.0.113.8") {
		t.Error("不同 IP 哈希应不同")
	}
	if len(a) != 16 {
		t.Errorf("哈希应为 8 字节十六进制（16 字符），实际 %d", len(a))
	}
}
