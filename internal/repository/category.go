package repository

import (
	"errors"

	"github.com/user/shortdrama/internal/model"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List 分类列表，按排序值排列；includeInactive 为 false 时只返回启用分类
func (r *CategoryRepository) List(includeInactive bool) ([]model.Category, error) {
	q := r.db.Model(&model.Category{})
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}

	var categories []model.Category
	if err := q.Order("sort_order ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}

	// 填充派生剧目数
	for i := range categories {
		r.db.Model(&model.Drama{}).
			Where("category = ?", categories[i].Name).
			Count(&categories[i].DramaCount)
	}

	return categories, nil
}

// FindByID 根据 ID 查找分类
func (r *CategoryRepository) FindByID(id int) (*model.Category, error) {
	var category model.Category
	err := r.db.First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByName 根据名称查找分类
func (r *CategoryRepository) FindByName(name string) (*model.Category, error) {
	var category model.Category
	err := r.db.Where("name = ?", name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Create 创建分类
func (r *CategoryRepository) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

// Update 更新分类
func (r *CategoryRepository) Update(category *model.Category) error {
	return r.db.Save(category).Error
}

// Delete 删除分类（引用检查在服务层完成）
func (r *CategoryRepository) Delete(id int) error {
	return r.db.Delete(&model.Category{}, id).Error
}

// ToggleActive 切换启用状态
func (r *CategoryRepository) ToggleActive(id int) error {
	return r.db.Model(&model.Category{}).
		Where("id = ?", id).
		UpdateColumn("is_active", gorm.Expr("NOT is_active")).Error
}

// UpdateSortOrder 按传入顺序重排分类
func (r *CategoryRepository) UpdateSortOrder(ids []int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(&model.Category{}).
				Where("id = ?", id).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Stats 分类统计
func (r *CategoryRepository) Stats() (*model.CategoryStats, error) {
	var stats model.CategoryStats
	if err := r.db.Model(&model.Category{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Category{}).Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	stats.Inactive = stats.Total - stats.Active
	if err := r.db.Model(&model.Drama{}).Count(&stats.Dramas).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// SearchByName 名称/描述子串搜索（搜索服务的候选集）
func (r *CategoryRepository) SearchByName(keyword string, limit int) ([]model.Category, error) {
	like := "%" + keyword + "%"
	var categories []model.Category
	err := r.db.
		Where("name ILIKE ? OR description ILIKE ?", like, like).
		Limit(limit).
		Find(&categories).Error
	return categories, err
}
