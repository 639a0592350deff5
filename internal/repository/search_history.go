package repository

import (
	"time"

	"github.com/user/shortdrama/internal/model"
	"gorm.io/gorm"
)

type SearchHistoryRepository struct {
	db *gorm.DB
}

func NewSearchHistoryRepository(db *gorm.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

// Log 记录一次搜索
func (r *SearchHistoryRepository) Log(entry *model.SearchHistory) error {
	entry.CreatedAt = time.Now()
	return r.db.Create(entry).Error
}

// ListByUser 用户的搜索历史，按时间倒序
func (r *SearchHistoryRepository) ListByUser(userID, limit int) ([]model.SearchHistory, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var entries []model.SearchHistory
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// DeleteByUser 清空用户的搜索历史
func (r *SearchHistoryRepository) DeleteByUser(userID int) (int64, error) {
	result := r.db.Where("user_id = ?", userID).Delete(&model.SearchHistory{})
	return result.RowsAffected, result.Error
}

// PopularKeywords 热搜词：按时间窗聚合查询次数
func (r *SearchHistoryRepository) PopularKeywords(hours, limit int) ([]model.PopularKeyword, error) {
	var keywords []model.PopularKeyword
	err := r.db.Raw(`
		SELECT query AS keyword, COUNT(*) AS count, MAX(created_at) AS last_searched_at
		FROM search_histories
		WHERE created_at > NOW() - INTERVAL '1 hour' * ?
		GROUP BY query
		ORDER BY count DESC
		LIMIT ?
	`, hours, limit).Scan(&keywords).Error
	return keywords, err
}

// SuggestKeywords 建议词：以前缀命中的历史查询词
func (r *SearchHistoryRepository) SuggestKeywords(prefix string, limit int) ([]string, error) {
	var keywords []string
	err := r.db.Model(&model.SearchHistory{}).
		Where("query ILIKE ?", prefix+"%").
		Group("query").
		Order("COUNT(*) DESC").
		Limit(limit).
		Pluck("query", &keywords).Error
	return keywords, err
}

// DeleteStaleKeywords 整词清理：某个查询词最近一次搜索已超过 days 天时，
// 删除该词的全部历史，让它尽早退出建议词候选
func (r *SearchHistoryRepository) DeleteStaleKeywords(days int) (int64, error) {
	result := r.db.Exec(`
		DELETE FROM search_histories
		WHERE query IN (
			SELECT query FROM search_histories
			GROUP BY query
			HAVING MAX(created_at) < NOW() - INTERVAL '1 day' * ?
		)
	`, days)
	return result.RowsAffected, result.Error
}

// DeleteOld 清理超过保留期的搜索历史
func (r *SearchHistoryRepository) DeleteOld(days int) (int64, error) {
	result := r.db.Exec(`
		DELETE FROM search_histories
		WHERE created_at < NOW() - INTERVAL '1 day' * ?
	`, days)
	return result.RowsAffected, result.Error
}
