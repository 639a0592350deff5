package model

import (
	"time"

	"gorm.io/datatypes"
)

// 偏好列表长度上限
const (
	MaxPreferredCategories = 10
	MaxPreferredTags       = 20
	MaxPreferredActors     = 15
)

// WeightedItem 加权偏好项，权重取值 [0,1]
type WeightedItem struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ViewingStats 观看时长统计
type ViewingStats struct {
	TotalMinutes   int64   `json:"totalMinutes"`
	SessionCount   int64   `json:"sessionCount"`
	AvgMinutes     float64 `json:"avgMinutes"`
	CompletedCount int64   `json:"completedCount"`
}

// UserPreference 用户偏好画像
type UserPreference struct {
	ID              int                                `json:"id" gorm:"primaryKey"`
	UserID          int                                `json:"userId" gorm:"column:user_id;uniqueIndex"`
	Categories      datatypes.JSONSlice[WeightedItem]  `json:"categories"`
	Tags            datatypes.JSONSlice[WeightedItem]  `json:"tags"`
	Actors          datatypes.JSONSlice[WeightedItem]  `json:"actors"`
	PreferredRating float64                            `json:"preferredRating" gorm:"column:preferred_rating"`
	Viewing         datatypes.JSONType[ViewingStats]   `json:"viewing"`
	UpdatedAt       time.Time                          `json:"updatedAt"`
}

// IsEmpty 判断画像是否为空（无任何加权项时个性化推荐回退到热门策略）
func (p *UserPreference) IsEmpty() bool {
	return p == nil || (len(p.Categories) == 0 && len(p.Tags) == 0 && len(p.Actors) == 0)
}
