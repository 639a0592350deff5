package repository

import (
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/user/shortdrama/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 排序字段白名单，防止外部参数注入 ORDER BY
var dramaSortFields = map[string]string{
	"rating":       "rating",
	"viewCount":    "view_count",
	"releaseDate":  "release_date",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"episodeCount": "episode_count",
	"title":        "title",
}

type DramaRepository struct {
	db *gorm.DB
}

func NewDramaRepository(db *gorm.DB) *DramaRepository {
	return &DramaRepository{db: db}
}

// applyFilter 将过滤条件翻译为查询
func (r *DramaRepository) applyFilter(f model.DramaFilter) *gorm.DB {
	q := r.db.Model(&model.Drama{})

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if len(f.Tags) > 0 {
		// 任一标签命中即可
		q = q.Where("tags && ?", pq.StringArray(f.Tags))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.IsHot != nil {
		q = q.Where("is_hot = ?", *f.IsHot)
	}
	if f.IsNew != nil {
		q = q.Where("is_new_drama = ?", *f.IsNew)
	}
	if f.MinRating != nil {
		q = q.Where("rating >= ?", *f.MinRating)
	}
	if f.MaxRating != nil {
		q = q.Where("rating <= ?", *f.MaxRating)
	}
	if f.ReleasedAfter != nil {
		q = q.Where("release_date >= ?", *f.ReleasedAfter)
	}
	if f.ReleasedBefore != nil {
		q = q.Where("release_date <= ?", *f.ReleasedBefore)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ? OR array_to_string(tags, ',') ILIKE ?",
			like, like, like)
	}

	return q
}

// BuildSortClause 排序参数 → ORDER BY 子句（字段白名单兜底 created_at）
func BuildSortClause(sortBy, sortOrder string) string {
	column, ok := dramaSortFields[sortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}
	return column + " " + direction
}

// List 分页列表查询（Query Service）
func (r *DramaRepository) List(f model.DramaFilter) (*model.DramaPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	q := r.applyFilter(f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []model.Drama
	err := q.Order(BuildSortClause(f.SortBy, f.SortOrder)).
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return BuildDramaPage(items, total, f), nil
}

// BuildDramaPage 组装分页结果，总页数向上取整
func BuildDramaPage(items []model.Drama, total int64, f model.DramaFilter) *model.DramaPage {
	return &model.DramaPage{
		Items: items,
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
		Pages: int((total + int64(f.Limit) - 1) / int64(f.Limit)),
		Query: f,
	}
}

// FindByID 根据 ID 查找剧目
func (r *DramaRepository) FindByID(id int) (*model.Drama, error) {
	var drama model.Drama
	err := r.db.First(&drama, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &drama, nil
}

// IncrementView 浏览量原子自增
func (r *DramaRepository) IncrementView(id int) error {
	return r.db.Model(&model.Drama{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// AddCounters 评论数/收藏数增量更新（可为负）
func (r *DramaRepository) AddCounters(id int, comments, favorites int64) error {
	return r.db.Model(&model.Drama{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"comment_count":  gorm.Expr("GREATEST(comment_count + ?, 0)", comments),
			"favorite_count": gorm.Expr("GREATEST(favorite_count + ?, 0)", favorites),
		}).Error
}

// FindSimilarCandidates 查找与种子剧目同分类、标签重合或演员重合的候选
func (r *DramaRepository) FindSimilarCandidates(seed *model.Drama, limit int) ([]model.Drama, error) {
	var items []model.Drama
	err := r.db.
		Where("id <> ?", seed.ID).
		Where("category = ? OR tags && ? OR \"cast\" && ?",
			seed.Category, seed.Tags, seed.Cast).
		Limit(limit).
		Find(&items).Error
	return items, err
}

// FindPersonalizedCandidates 按偏好分类/标签查找个性化候选
func (r *DramaRepository) FindPersonalizedCandidates(categories, tags []string, excludeIDs []int, limit int) ([]model.Drama, error) {
	q := r.db.Model(&model.Drama{})

	switch {
	case len(categories) > 0 && len(tags) > 0:
		q = q.Where("category IN ? OR tags && ?", categories, pq.StringArray(tags))
	case len(categories) > 0:
		q = q.Where("category IN ?", categories)
	case len(tags) > 0:
		q = q.Where("tags && ?", pq.StringArray(tags))
	}
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	var items []model.Drama
	err := q.Order("rating DESC").Limit(limit).Find(&items).Error
	return items, err
}

// FindTrendingCandidates 趋势候选：按浏览量、评分、更新时间排序
func (r *DramaRepository) FindTrendingCandidates(limit int) ([]model.Drama, error) {
	var items []model.Drama
	err := r.db.
		Order("view_count DESC").Order("rating DESC").Order("updated_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// FindByFlag 按 is_hot / is_new_drama 标志查找
func (r *DramaRepository) FindByFlag(flag string, limit int) ([]model.Drama, error) {
	column := "is_hot"
	if flag == "new" {
		column = "is_new_drama"
	}
	var items []model.Drama
	err := r.db.
		Where(column+" = ?", true).
		Order("rating DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// FindByCategories 按分类集合查找
func (r *DramaRepository) FindByCategories(categories []string, limit int) ([]model.Drama, error) {
	var items []model.Drama
	err := r.db.
		Where("category IN ?", categories).
		Order("rating DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// FindUpdatedBetween 排行候选：时间窗内更新过的剧目；category 可选
func (r *DramaRepository) FindUpdatedBetween(start, end time.Time, category string, limit int) ([]model.Drama, error) {
	q := r.db.Model(&model.Drama{})
	if !start.IsZero() {
		q = q.Where("updated_at >= ? AND updated_at < ?", start, end)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var items []model.Drama
	err := q.Order("view_count DESC").Limit(limit).Find(&items).Error
	return items, err
}

// SearchText 全文子串搜索（搜索服务的候选集）
func (r *DramaRepository) SearchText(keyword string, limit int) ([]model.Drama, error) {
	like := "%" + keyword + "%"
	var items []model.Drama
	err := r.db.
		Where("title ILIKE ? OR description ILIKE ? OR array_to_string(tags, ',') ILIKE ? OR array_to_string(\"cast\", ',') ILIKE ?",
			like, like, like, like).
		Limit(limit).
		Find(&items).Error
	return items, err
}

// CountByCategory 统计引用某分类的剧目数（分类删除守卫）
func (r *DramaRepository) CountByCategory(name string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Drama{}).Where("category = ?", name).Count(&count).Error
	return count, err
}

// Upsert 按标题+上线日期创建或更新（导入流程）
func (r *DramaRepository) Upsert(drama *model.Drama) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "title"}, {Name: "release_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"description", "poster", "category", "tags", "rating",
			"episode_count", "duration", "status", "cast", "updated_at",
		}),
	}).Create(drama).Error
}
