package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// 剧目状态
const (
	DramaStatusUpdating   = "updating"
	DramaStatusCompleted  = "completed"
	DramaStatusComingSoon = "coming-soon"
)

// 上线 30 天内视为新剧
const NewDramaWindowDays = 30

// Drama 短剧模型
type Drama struct {
	ID            int            `json:"id" gorm:"primaryKey"`
	Title         string         `json:"title" gorm:"uniqueIndex:idx_drama_title_release"`
	Description   string         `json:"description"`
	Poster        string         `json:"poster"`
	Category      string         `json:"category" gorm:"index"`
	Tags          pq.StringArray `json:"tags" gorm:"type:text[]"`
	Rating        float64        `json:"rating"`
	ViewCount     int64          `json:"viewCount" gorm:"column:view_count"`
	EpisodeCount  int            `json:"episodeCount" gorm:"column:episode_count"`
	Duration      string         `json:"duration"`
	Status        string         `json:"status" gorm:"default:updating"`
	Cast          pq.StringArray `json:"cast" gorm:"type:text[]"`
	ReleaseDate   time.Time      `json:"releaseDate" gorm:"column:release_date;uniqueIndex:idx_drama_title_release"`
	IsHot         bool           `json:"isHot" gorm:"column:is_hot;index"`
	IsNewDrama    bool           `json:"isNewDrama" gorm:"column:is_new_drama;index"`
	CommentCount  int64          `json:"commentCount" gorm:"column:comment_count"`
	FavoriteCount int64          `json:"favoriteCount" gorm:"column:favorite_count"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// BeforeSave 保存时根据上线日期自动推导新剧标记
func (d *Drama) BeforeSave(tx *gorm.DB) error {
	d.IsNewDrama = !d.ReleaseDate.IsZero() &&
		time.Since(d.ReleaseDate) < NewDramaWindowDays*24*time.Hour
	return nil
}

// DramaFilter 列表查询过滤条件（GET /dramas 的全部查询参数）
type DramaFilter struct {
	Category       string
	Tags           []string
	Status         string
	IsHot          *bool
	IsNew          *bool
	MinRating      *float64
	MaxRating      *float64
	ReleasedAfter  *time.Time
	ReleasedBefore *time.Time
	Search         string
	Page           int
	Limit          int
	SortBy         string
	SortOrder      string
}

// DramaPage 分页结果
type DramaPage struct {
	Items []Drama     `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Pages int         `json:"pages"`
	Query DramaFilter `json:"-"`
}
