package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/user/shortdrama/internal/cache"
	"github.com/user/shortdrama/internal/model"
)

type dramaStore interface {
	List(f model.DramaFilter) (*model.DramaPage, error)
	FindByID(id int) (*model.Drama, error)
	IncrementView(id int) error
	FindByFlag(flag string, limit int) ([]model.Drama, error)
	FindTrendingCandidates(limit int) ([]model.Drama, error)
}

// DramaService 剧目查询服务，读路径全部经过缓存层
type DramaService struct {
	dramas dramaStore
	cache  *cache.Cache
}

// NewDramaService 创建剧目服务
func NewDramaService(dramas dramaStore, c *cache.Cache) *DramaService {
	return &DramaService{dramas: dramas, cache: c}
}

// List 分页列表，缓存键含完整过滤条件
func (s *DramaService) List(ctx context.Context, f model.DramaFilter) (*model.DramaPage, error) {
	key := listCacheKey(f)
	return cache.Fetch(ctx, s.cache, key, cache.TTLList, func() (*model.DramaPage, error) {
		return s.dramas.List(f)
	})
}

// Detail 剧目详情
func (s *DramaService) Detail(ctx context.Context, id int) (*model.Drama, error) {
	key := cache.Key(cache.PrefixDramaDetail, id)
	drama, err := cache.Fetch(ctx, s.cache, key, cache.TTLDetail, func() (*model.Drama, error) {
		d, err := s.dramas.FindByID(id)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, ErrNotFound
		}
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return drama, nil
}

// RecordView 浏览量自增。缓存中的计数允许在 TTL 内滞后，不做失效
func (s *DramaService) RecordView(id int) error {
	return s.dramas.IncrementView(id)
}

// Hot 热门剧目列表
func (s *DramaService) Hot(ctx context.Context, limit int) ([]model.Drama, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	key := cache.Key(cache.PrefixDramaList, "hot", limit)
	return cache.Fetch(ctx, s.cache, key, cache.TTLList, func() ([]model.Drama, error) {
		return s.dramas.FindByFlag("hot", limit)
	})
}

// New 新剧列表
func (s *DramaService) New(ctx context.Context, limit int) ([]model.Drama, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	key := cache.Key(cache.PrefixDramaList, "new", limit)
	return cache.Fetch(ctx, s.cache, key, cache.TTLList, func() ([]model.Drama, error) {
		return s.dramas.FindByFlag("new", limit)
	})
}

// Trending 趋势列表
func (s *DramaService) Trending(ctx context.Context, limit int) ([]model.Drama, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	key := cache.Key(cache.PrefixDramaList, "trending", limit)
	return cache.Fetch(ctx, s.cache, key, cache.TTLList, func() ([]model.Drama, error) {
		return s.dramas.FindTrendingCandidates(limit)
	})
}

// Invalidate 写入后失效：详情键精确删，列表类前缀删
func (s *DramaService) Invalidate(ctx context.Context, id int) {
	if id > 0 {
		s.cache.Delete(ctx, cache.Key(cache.PrefixDramaDetail, id))
	}
	s.cache.DeletePattern(ctx, cache.PrefixDramaList+":*")
	s.cache.DeletePattern(ctx, cache.PrefixSearch+":*")
	s.cache.DeletePattern(ctx, cache.PrefixRecommend+":*")
	s.cache.DeletePattern(ctx, cache.PrefixRanking+":*")
}

// listCacheKey 过滤条件序列化进缓存键，保证不同查询互不串味
func listCacheKey(f model.DramaFilter) string {
	raw, err := json.Marshal(f)
	if err != nil {
		log.Warn().Err(err).Msg("列表过滤条件序列化失败")
		return cache.Key(cache.PrefixDramaList, "default")
	}
	return cache.Key(cache.PrefixDramaList, string(raw))
}
