package service

import (
	"context"
	"sort"
	"time"

	"github.com/user/shortdrama/internal/cache"
	"github.com/user/shortdrama/internal/model"
	"gorm.io/datatypes"
)

// 各行为对命中偏好项的增量，未命中项按 decayStep 衰减
const (
	boostView     = 0.05
	boostLike     = 0.10
	boostFavorite = 0.15
	boostComplete = 0.20
	decayStep     = 0.02

	// 偏好评分中点向新样本靠拢的步长
	ratingLearnRate = 0.1
)

var actionBoosts = map[string]float64{
	model.ActionView:     boostView,
	model.ActionLike:     boostLike,
	model.ActionFavorite: boostFavorite,
	model.ActionComplete: boostComplete,
}

type prefRepository interface {
	FindByUser(userID int) (*model.UserPreference, error)
	Save(pref *model.UserPreference) error
	Delete(userID int) error
}

type prefDramaStore interface {
	FindByID(id int) (*model.Drama, error)
	AddCounters(id int, comments, favorites int64) error
}

type prefWatchStore interface {
	Upsert(history *model.WatchHistory) error
}

// PreferenceService 偏好画像服务
type PreferenceService struct {
	prefs  prefRepository
	dramas prefDramaStore
	watch  prefWatchStore
	cache  *cache.Cache
}

// NewPreferenceService 创建偏好服务
func NewPreferenceService(prefs prefRepository, dramas prefDramaStore, watch prefWatchStore, c *cache.Cache) *PreferenceService {
	return &PreferenceService{prefs: prefs, dramas: dramas, watch: watch, cache: c}
}

// Get 读取用户偏好画像，不存在时返回空画像
func (s *PreferenceService) Get(userID int) (*model.UserPreference, error) {
	pref, err := s.prefs.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		pref = &model.UserPreference{UserID: userID}
	}
	return pref, nil
}

// Update 整体覆盖偏好画像（权重裁剪到 [0,1]，列表截断到上限）
func (s *PreferenceService) Update(ctx context.Context, userID int, pref *model.UserPreference) (*model.UserPreference, error) {
	pref.UserID = userID
	pref.Categories = normalizeWeights(pref.Categories, model.MaxPreferredCategories)
	pref.Tags = normalizeWeights(pref.Tags, model.MaxPreferredTags)
	pref.Actors = normalizeWeights(pref.Actors, model.MaxPreferredActors)
	pref.PreferredRating = clamp(pref.PreferredRating, 0, 10)

	if err := s.prefs.Save(pref); err != nil {
		return nil, err
	}
	s.invalidateRecommendations(ctx)
	return pref, nil
}

// Reset 清空偏好画像
func (s *PreferenceService) Reset(ctx context.Context, userID int) error {
	if err := s.prefs.Delete(userID); err != nil {
		return err
	}
	s.invalidateRecommendations(ctx)
	return nil
}

// RecordAction 记录观看行为并增量学习偏好：
// 命中项按行为加权上调，其余项缓慢衰减，列表按权重截断
func (s *PreferenceService) RecordAction(ctx context.Context, userID, dramaID int, action string, episode, progressSec int, minutes int64) error {
	boost, ok := actionBoosts[action]
	if !ok {
		boost = boostView
		action = model.ActionView
	}

	drama, err := s.dramas.FindByID(dramaID)
	if err != nil {
		return err
	}
	if drama == nil {
		return ErrNotFound
	}

	if err := s.watch.Upsert(&model.WatchHistory{
		UserID:      userID,
		DramaID:     dramaID,
		Episode:     episode,
		ProgressSec: progressSec,
		Completed:   action == model.ActionComplete,
		WatchedAt:   time.Now(),
	}); err != nil {
		return err
	}

	// 收藏行为同步进剧目的收藏计数
	if action == model.ActionFavorite {
		if err := s.dramas.AddCounters(dramaID, 0, 1); err != nil {
			return err
		}
	}

	pref, err := s.Get(userID)
	if err != nil {
		return err
	}

	if drama.Category != "" {
		pref.Categories = learnItem(pref.Categories, []string{drama.Category}, boost, model.MaxPreferredCategories)
	}
	pref.Tags = learnItem(pref.Tags, drama.Tags, boost, model.MaxPreferredTags)
	pref.Actors = learnItem(pref.Actors, drama.Cast, boost, model.MaxPreferredActors)

	// 偏好评分中点向本次样本靠拢
	if drama.Rating > 0 {
		if pref.PreferredRating == 0 {
			pref.PreferredRating = drama.Rating
		} else {
			pref.PreferredRating += (drama.Rating - pref.PreferredRating) * ratingLearnRate
		}
	}

	stats := pref.Viewing.Data()
	stats.SessionCount++
	stats.TotalMinutes += minutes
	if stats.SessionCount > 0 {
		stats.AvgMinutes = float64(stats.TotalMinutes) / float64(stats.SessionCount)
	}
	if action == model.ActionComplete {
		stats.CompletedCount++
	}
	pref.Viewing = datatypes.NewJSONType(stats)
	pref.UpdatedAt = time.Now()

	if err := s.prefs.Save(pref); err != nil {
		return err
	}
	s.invalidateRecommendations(ctx)
	return nil
}

// 偏好变化后推荐缓存全部失效
func (s *PreferenceService) invalidateRecommendations(ctx context.Context) {
	s.cache.DeletePattern(ctx, cache.PrefixRecommend+":*")
}

// learnItem 命中名称加 boost，未命中衰减 decayStep，裁剪后按权重排序截断
func learnItem(items []model.WeightedItem, hits []string, boost float64, max int) []model.WeightedItem {
	hitSet := make(map[string]bool, len(hits))
	for _, h := range hits {
		if h != "" {
			hitSet[h] = true
		}
	}

	updated := make([]model.WeightedItem, 0, len(items)+len(hitSet))
	for _, item := range items {
		if hitSet[item.Name] {
			item.Weight = clamp(item.Weight+boost, 0, 1)
			delete(hitSet, item.Name)
		} else {
			item.Weight = clamp(item.Weight-decayStep, 0, 1)
		}
		if item.Weight > 0 {
			updated = append(updated, item)
		}
	}
	for name := range hitSet {
		updated = append(updated, model.WeightedItem{Name: name, Weight: clamp(boost, 0, 1)})
	}

	sort.SliceStable(updated, func(i, j int) bool {
		return updated[i].Weight > updated[j].Weight
	})
	if len(updated) > max {
		updated = updated[:max]
	}
	return updated
}

// normalizeWeights 外部提交的列表裁剪权重并截断长度
func normalizeWeights(items []model.WeightedItem, max int) []model.WeightedItem {
	cleaned := make([]model.WeightedItem, 0, len(items))
	for _, item := range items {
		if item.Name == "" {
			continue
		}
		item.Weight = clamp(item.Weight, 0, 1)
		cleaned = append(cleaned, item)
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Weight > cleaned[j].Weight
	})
	if len(cleaned) > max {
		cleaned = cleaned[:max]
	}
	return cleaned
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
