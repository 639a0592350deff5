package service

import (
	"context"

	"github.com/user/shortdrama/internal/cache"
	"github.com/user/shortdrama/internal/model"
)

type categoryStore interface {
	List(includeInactive bool) ([]model.Category, error)
	FindByID(id int) (*model.Category, error)
	FindByName(name string) (*model.Category, error)
	Create(category *model.Category) error
	Update(category *model.Category) error
	Delete(id int) error
	ToggleActive(id int) error
	UpdateSortOrder(ids []int) error
	Stats() (*model.CategoryStats, error)
}

type categoryDramaCounter interface {
	CountByCategory(name string) (int64, error)
}

// CategoryService 分类服务
type CategoryService struct {
	categories categoryStore
	dramas     categoryDramaCounter
	cache      *cache.Cache
}

// NewCategoryService 创建分类服务
func NewCategoryService(categories categoryStore, dramas categoryDramaCounter, c *cache.Cache) *CategoryService {
	return &CategoryService{categories: categories, dramas: dramas, cache: c}
}

// List 分类列表（含派生剧目数）
func (s *CategoryService) List(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	key := cache.Key(cache.PrefixCategory, "list", includeInactive)
	return cache.Fetch(ctx, s.cache, key, cache.TTLCategory, func() ([]model.Category, error) {
		return s.categories.List(includeInactive)
	})
}

// Get 分类详情
func (s *CategoryService) Get(id int) (*model.Category, error) {
	category, err := s.categories.FindByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// Create 创建分类，名称查重
func (s *CategoryService) Create(ctx context.Context, category *model.Category) error {
	existing, err := s.categories.FindByName(category.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrConflict
	}
	if err := s.categories.Create(category); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Update 更新分类；改名时检查新名称未被占用
func (s *CategoryService) Update(ctx context.Context, id int, update *model.Category) (*model.Category, error) {
	category, err := s.categories.FindByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}

	if update.Name != "" && update.Name != category.Name {
		existing, err := s.categories.FindByName(update.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrConflict
		}
		category.Name = update.Name
	}
	if update.Description != "" {
		category.Description = update.Description
	}
	if update.Color != "" {
		category.Color = update.Color
	}
	if update.SortOrder != 0 {
		category.SortOrder = update.SortOrder
	}

	if err := s.categories.Update(category); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

// Delete 删除分类。仍有剧目引用时拒绝，调用方据此返回 409
func (s *CategoryService) Delete(ctx context.Context, id int) error {
	category, err := s.categories.FindByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrNotFound
	}

	count, err := s.dramas.CountByCategory(category.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.categories.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ToggleActive 切换启用状态
func (s *CategoryService) ToggleActive(ctx context.Context, id int) (*model.Category, error) {
	category, err := s.categories.FindByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	if err := s.categories.ToggleActive(id); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.categories.FindByID(id)
}

// UpdateSortOrder 按传入 ID 顺序重排
func (s *CategoryService) UpdateSortOrder(ctx context.Context, ids []int) error {
	if err := s.categories.UpdateSortOrder(ids); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Stats 分类统计，缓存 1 小时
func (s *CategoryService) Stats(ctx context.Context) (*model.CategoryStats, error) {
	key := cache.Key(cache.PrefixStats, "categories")
	return cache.Fetch(ctx, s.cache, key, cache.TTLStats, func() (*model.CategoryStats, error) {
		return s.categories.Stats()
	})
}

func (s *CategoryService) invalidate(ctx context.Context) {
	s.cache.DeletePattern(ctx, cache.PrefixCategory+":*")
	s.cache.Delete(ctx, cache.Key(cache.PrefixStats, "categories"))
}
