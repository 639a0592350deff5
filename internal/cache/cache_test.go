package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestKeyDeterministic(t *testing.T) {
	a := Key(PrefixDramaList, "都市", 2, true)
	b := Key(PrefixDramaList, "都市", 2, true)
	if a != b {
		t.Errorf("同参数应得到同键: %q vs %q", a, b)
	}
	if a == Key(PrefixDramaList, "都市", 3, true) {
		t.Error("不同参数不应得到同键")
	}
	if Key(PrefixStats) != PrefixStats {
		t.Error("无参数时应返回裸前缀")
	}
}

func TestFetchReadsThroughOnce(t *testing.T) {
	c := New(NewMemoryStore())
	ctx := context.Background()

	loads := 0
	load := func() (string, error) {
		loads++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, c, "k", time.Minute, load)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if got != "value" {
			t.Fatalf("期望 value，实际 %q", got)
		}
	}

	if loads != 1 {
		t.Errorf("命中后不应再回源，回源次数 %d", loads)
	}
}

func TestFetchLoaderError(t *testing.T) {
	c := New(NewMemoryStore())
	wantErr := errors.New("db down")

	_, err := Fetch(context.Background(), c, "k", time.Minute, func() (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("回源错误应原样返回，实际 %v", err)
	}

	// 错误不应污染缓存
	var cached int
	if c.Get(context.Background(), "k", &cached) {
		t.Error("回源失败不应写缓存")
	}
}

// failingStore 模拟缓存后端故障
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Get(context.Context, string, interface{}) error        { return errStoreDown }
func (failingStore) Set(context.Context, string, interface{}, time.Duration) error {
	return errStoreDown
}
func (failingStore) Delete(context.Context, ...string) error { return errStoreDown }
func (failingStore) DeletePattern(context.Context, string) (int64, error) {
	return 0, errStoreDown
}
func (failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errStoreDown
}
func (failingStore) Expire(context.Context, string, time.Duration) error { return errStoreDown }
func (failingStore) Exists(context.Context, string) (bool, error) { return false, errStoreDown }
func (failingStore) Close() error                                 { return nil }

func TestFetchDegradesWhenStoreFails(t *testing.T) {
	c := New(failingStore{})

	got, err := Fetch(context.Background(), c, "k", time.Minute, func() (string, error) {
		return "from-db", nil
	})
	if err != nil {
		t.Fatalf("缓存故障应降级直连存储: %v", err)
	}
	if got != "from-db" {
		t.Errorf("期望 from-db，实际 %q", got)
	}
}

func TestMemoryStoreDeletePattern(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "dramas:list:a", 1, time.Minute)
	s.Set(ctx, "dramas:list:b", 2, time.Minute)
	s.Set(ctx, "dramas:detail:1", 3, time.Minute)

	deleted, err := s.DeletePattern(ctx, "dramas:list:*")
	if err != nil {
		t.Fatalf("DeletePattern: %v", err)
	}
	if deleted != 2 {
		t.Errorf("应删除 2 个键，实际 %d", deleted)
	}

	var v int
	if err := s.Get(ctx, "dramas:detail:1", &v); err != nil || v != 3 {
		t.Errorf("不匹配的键应保留: %v %d", err, v)
	}
}

func TestMemoryStoreIncr(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := s.Incr(ctx, "counter", time.Minute)
		if err != nil {
			t.Fatalf("Incr: %v", err)
		}
		if got != want {
			t.Errorf("第 %d 次自增应为 %d，实际 %d", want, want, got)
		}
	}
}

func TestMemoryStoreIncrConcurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.Incr(ctx, "counter", time.Minute); err != nil {
				t.Errorf("Incr: %v", err)
			}
		}()
	}
	wg.Wait()

	var count int64
	if err := s.Get(ctx, "counter", &count); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if count != workers {
		t.Errorf("%d 个并发自增不应丢失计数，实际 %d", workers, count)
	}
}

func TestMemoryStoreExpire(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "k", 1, time.Minute)
	if err := s.Expire(ctx, "k", 10*time.Millisecond); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	var v int
	if err := s.Get(ctx, "k", &v); err != ErrCacheMiss {
		t.Errorf("重设后的过期时间应生效，实际 %v", err)
	}
}
