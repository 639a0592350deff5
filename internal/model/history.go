package model

import (
	"time"

	"gorm.io/datatypes"
)

// SearchFilters 搜索时应用的过滤条件，随历史一并落库
type SearchFilters struct {
	Type      string `json:"type,omitempty"`
	Category  string `json:"category,omitempty"`
	SortBy    string `json:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder,omitempty"`
}

// SearchHistory 搜索历史，超过保留期由清理任务删除
type SearchHistory struct {
	ID          int                               `json:"id" gorm:"primaryKey"`
	UserID      *int                              `json:"userId" gorm:"column:user_id;index"`
	Query       string                            `json:"query"`
	Filters     datatypes.JSONType[SearchFilters] `json:"filters"`
	ResultCount int                               `json:"resultCount" gorm:"column:result_count"`
	IPHash      string                            `json:"-" gorm:"column:ip_hash"`
	CreatedAt   time.Time                         `json:"createdAt" gorm:"index"`
}

// PopularKeyword 热搜词聚合
type PopularKeyword struct {
	Keyword        string    `json:"keyword"`
	Count          int64     `json:"count"`
	LastSearchedAt time.Time `json:"lastSearchedAt"`
}

// 观看行为，驱动偏好权重更新
const (
	ActionView     = "view"
	ActionLike     = "like"
	ActionFavorite = "favorite"
	ActionComplete = "complete"
)

// WatchHistory 观看历史
type WatchHistory struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	UserID      int       `json:"userId" gorm:"column:user_id;uniqueIndex:idx_watch_user_drama"`
	DramaID     int       `json:"dramaId" gorm:"column:drama_id;uniqueIndex:idx_watch_user_drama"`
	Episode     int       `json:"episode"`
	ProgressSec int       `json:"progressSec" gorm:"column:progress_sec"`
	Completed   bool      `json:"completed"`
	WatchedAt   time.Time `json:"watchedAt" gorm:"column:watched_at"`
}
