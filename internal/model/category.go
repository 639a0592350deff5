package model

import "time"

// Category 分类模型
type Category struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sortOrder" gorm:"column:sort_order"`
	IsActive    bool      `json:"isActive" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// 派生字段：引用该分类的剧目数，关联查询时填充
	DramaCount int64 `json:"dramaCount" gorm:"-"`
}

// CategoryStats 分类统计
type CategoryStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Dramas   int64 `json:"dramas"`
}
