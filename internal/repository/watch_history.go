package repository

import (
	"time"

	"github.com/user/shortdrama/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchHistoryRepository struct {
	db *gorm.DB
}

func NewWatchHistoryRepository(db *gorm.DB) *WatchHistoryRepository {
	return &WatchHistoryRepository{db: db}
}

// Upsert 更新观看进度，同一用户同一剧目只保留一条
func (r *WatchHistoryRepository) Upsert(entry *model.WatchHistory) error {
	entry.WatchedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "drama_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"episode", "progress_sec", "completed", "watched_at",
		}),
	}).Create(entry).Error
}

// ListByUser 用户观看历史，按时间倒序
func (r *WatchHistoryRepository) ListByUser(userID, limit int) ([]model.WatchHistory, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var entries []model.WatchHistory
	err := r.db.
		Where("user_id = ?", userID).
		Order("watched_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// WatchedDramaIDs 用户看过的剧目 ID（exclude-watched 过滤用）
func (r *WatchHistoryRepository) WatchedDramaIDs(userID int) ([]int, error) {
	var ids []int
	err := r.db.Model(&model.WatchHistory{}).
		Where("user_id = ?", userID).
		Pluck("drama_id", &ids).Error
	return ids, err
}
