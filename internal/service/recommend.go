package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/user/shortdrama/internal/cache"
	"github.com/user/shortdrama/internal/model"
)

// 推荐策略
const (
	StrategyPersonalized = "personalized"
	StrategySimilar      = "similar"
	StrategyTrending     = "trending"
	StrategyHot          = "hot"
	StrategyNew          = "new"
	StrategyCategory     = "category-based"
)

// 偏好项参与查询的最低权重
const preferenceWeightFloor = 0.3

// RecommendRequest 推荐请求
type RecommendRequest struct {
	UserID         int      `json:"userId"`
	SeedID         int      `json:"seedId"`
	Strategy       string   `json:"strategy"`
	Limit          int      `json:"limit"`
	Categories     []string `json:"categories"`
	ExcludeWatched bool     `json:"excludeWatched"`
}

// RecommendedDrama 带评分与推荐理由的结果项
type RecommendedDrama struct {
	Drama  model.Drama `json:"drama"`
	Score  float64     `json:"score"`
	Reason string      `json:"reason"`
}

// 推荐服务的存储依赖
type recommendDramaStore interface {
	FindByID(id int) (*model.Drama, error)
	FindSimilarCandidates(seed *model.Drama, limit int) ([]model.Drama, error)
	FindPersonalizedCandidates(categories, tags []string, excludeIDs []int, limit int) ([]model.Drama, error)
	FindTrendingCandidates(limit int) ([]model.Drama, error)
	FindByFlag(flag string, limit int) ([]model.Drama, error)
	FindByCategories(categories []string, limit int) ([]model.Drama, error)
}

type preferenceStore interface {
	FindByUser(userID int) (*model.UserPreference, error)
}

type watchedStore interface {
	WatchedDramaIDs(userID int) ([]int, error)
}

// RecommendService 推荐服务
type RecommendService struct {
	dramas  recommendDramaStore
	prefs   preferenceStore
	watched watchedStore
	cache   *cache.Cache
}

// NewRecommendService 创建推荐服务
func NewRecommendService(dramas recommendDramaStore, prefs preferenceStore, watched watchedStore, c *cache.Cache) *RecommendService {
	return &RecommendService{
		dramas:  dramas,
		prefs:   prefs,
		watched: watched,
		cache:   c,
	}
}

// Recommend 按策略产出推荐列表，整个调用经过缓存层（键含完整请求形状）
func (s *RecommendService) Recommend(ctx context.Context, req RecommendRequest) ([]RecommendedDrama, error) {
	if req.Limit < 1 || req.Limit > 50 {
		req.Limit = 10
	}
	if req.Strategy == "" {
		req.Strategy = StrategyHot
	}

	key := cache.Key(cache.PrefixRecommend,
		req.Strategy, req.UserID, req.SeedID, req.Limit,
		strings.Join(req.Categories, ","), req.ExcludeWatched)

	return cache.Fetch(ctx, s.cache, key, cache.TTLRecommend, func() ([]RecommendedDrama, error) {
		return s.recommend(req)
	})
}

func (s *RecommendService) recommend(req RecommendRequest) ([]RecommendedDrama, error) {
	switch req.Strategy {
	case StrategyPersonalized:
		return s.personalized(req)
	case StrategySimilar:
		return s.similar(req)
	case StrategyTrending:
		return s.trending(req)
	case StrategyNew:
		return s.newDramas(req)
	case StrategyCategory:
		return s.categoryBased(req)
	default:
		return s.hot(req)
	}
}

// personalized 个性化推荐：基于偏好画像打分；无画像时回退到热门策略
func (s *RecommendService) personalized(req RecommendRequest) ([]RecommendedDrama, error) {
	pref, err := s.prefs.FindByUser(req.UserID)
	if err != nil {
		return nil, err
	}
	if pref.IsEmpty() {
		return s.hot(req)
	}

	categories := weightedNames(pref.Categories, preferenceWeightFloor)
	tags := weightedNames(pref.Tags, preferenceWeightFloor)

	var excludeIDs []int
	if req.ExcludeWatched {
		excludeIDs, err = s.watched.WatchedDramaIDs(req.UserID)
		if err != nil {
			return nil, err
		}
	}

	candidates, err := s.dramas.FindPersonalizedCandidates(categories, tags, excludeIDs, req.Limit*3)
	if err != nil {
		return nil, err
	}

	results := make([]RecommendedDrama, 0, len(candidates))
	for _, d := range candidates {
		score, reason := scorePersonalized(&d, pref)
		results = append(results, RecommendedDrama{Drama: d, Score: score, Reason: reason})
	}
	return sortAndTruncate(results, req.Limit), nil
}

// similar 相似推荐：与种子剧目按分类/标签/演员重合打分
func (s *RecommendService) similar(req RecommendRequest) ([]RecommendedDrama, error) {
	seed, err := s.dramas.FindByID(req.SeedID)
	if err != nil {
		return nil, err
	}
	if seed == nil {
		return nil, ErrNotFound
	}

	candidates, err := s.dramas.FindSimilarCandidates(seed, req.Limit*3)
	if err != nil {
		return nil, err
	}

	results := make([]RecommendedDrama, 0, len(candidates))
	for _, d := range candidates {
		score, reason := ScoreSimilar(seed, &d)
		results = append(results, RecommendedDrama{Drama: d, Score: score, Reason: reason})
	}
	return sortAndTruncate(results, req.Limit), nil
}

// trending 趋势推荐
func (s *RecommendService) trending(req RecommendRequest) ([]RecommendedDrama, error) {
	candidates, err := s.dramas.FindTrendingCandidates(req.Limit * 3)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	results := make([]RecommendedDrama, 0, len(candidates))
	for _, d := range candidates {
		days := now.Sub(d.UpdatedAt).Hours() / 24
		score := math.Log10(float64(d.ViewCount)+1)*10 +
			d.Rating*8 +
			math.Max(0, 20-0.5*days)
		results = append(results, RecommendedDrama{
			Drama:  d,
			Score:  score,
			Reason: fmt.Sprintf("近期热度上升，%d 人在看", d.ViewCount),
		})
	}
	return sortAndTruncate(results, req.Limit), nil
}

// hot 热门推荐：只取 is_hot 标记的剧目
func (s *RecommendService) hot(req RecommendRequest) ([]RecommendedDrama, error) {
	candidates, err := s.dramas.FindByFlag("hot", req.Limit*3)
	if err != nil {
		return nil, err
	}

	results := make([]RecommendedDrama, 0, len(candidates))
	for _, d := range candidates {
		score := d.Rating*10 + math.Log10(float64(d.ViewCount)+1)
		results = append(results, RecommendedDrama{
			Drama:  d,
			Score:  score,
			Reason: fmt.Sprintf("全站热播，评分 %.1f", d.Rating),
		})
	}
	return sortAndTruncate(results, req.Limit), nil
}

// newDramas 新剧推荐：只取 is_new_drama 标记的剧目
func (s *RecommendService) newDramas(req RecommendRequest) ([]RecommendedDrama, error) {
	candidates, err := s.dramas.FindByFlag("new", req.Limit*3)
	if err != nil {
		return nil, err
	}

	results := make([]RecommendedDrama, 0, len(candidates))
	for _, d := range candidates {
		results = append(results, RecommendedDrama{
			Drama:  d,
			Score:  80 + d.Rating,
			Reason: "新剧上线，先睹为快",
		})
	}
	return sortAndTruncate(results, req.Limit), nil
}

// categoryBased 按分类推荐
func (s *RecommendService) categoryBased(req RecommendRequest) ([]RecommendedDrama, error) {
	if len(req.Categories) == 0 {
		return s.hot(req)
	}

	candidates, err := s.dramas.FindByCategories(req.Categories, req.Limit*3)
	if err != nil {
		return nil, err
	}

	results := make([]RecommendedDrama, 0, len(candidates))
	for _, d := range candidates {
		score := d.Rating*8 + math.Log10(float64(d.ViewCount)+1)
		results = append(results, RecommendedDrama{
			Drama:  d,
			Score:  score,
			Reason: fmt.Sprintf("%s 分类中的优质剧目", d.Category),
		})
	}
	return sortAndTruncate(results, req.Limit), nil
}

// scorePersonalized 个性化打分：
// 分类权重×40 + Σ(标签权重×20) + Σ(演员权重×15) + max(0, 25−5×|评分−偏好评分|)，上限 100
func scorePersonalized(d *model.Drama, pref *model.UserPreference) (float64, string) {
	var score float64
	signals := []string{}

	if w, ok := findWeight(pref.Categories, d.Category); ok {
		score += w * 40
		signals = append(signals, fmt.Sprintf("偏好分类「%s」", d.Category))
	}

	matchedTags := []string{}
	for _, tag := range d.Tags {
		if w, ok := findWeight(pref.Tags, tag); ok {
			score += w * 20
			matchedTags = append(matchedTags, tag)
		}
	}
	if len(matchedTags) > 0 {
		signals = append(signals, "标签 "+strings.Join(matchedTags, "、"))
	}

	matchedActors := []string{}
	for _, actor := range d.Cast {
		if w, ok := findWeight(pref.Actors, actor); ok {
			score += w * 15
			matchedActors = append(matchedActors, actor)
		}
	}
	if len(matchedActors) > 0 {
		signals = append(signals, "喜欢的演员 "+strings.Join(matchedActors, "、"))
	}

	if pref.PreferredRating > 0 {
		score += math.Max(0, 25-5*math.Abs(d.Rating-pref.PreferredRating))
	}

	score = math.Min(score, 100)

	reason := "根据你的观看偏好推荐"
	if len(signals) > 0 {
		reason = "匹配" + strings.Join(signals, "，")
	}
	return score, reason
}

// ScoreSimilar 相似度打分：
// 同分类 30 + 共同标签×10 + 共同演员×15 + max(0, 20−4×|评分差|)，上限 100
func ScoreSimilar(seed, candidate *model.Drama) (float64, string) {
	var score float64
	signals := []string{}

	if candidate.Category != "" && candidate.Category == seed.Category {
		score += 30
		signals = append(signals, fmt.Sprintf("同属「%s」", seed.Category))
	}

	commonTags := intersect(seed.Tags, candidate.Tags)
	if len(commonTags) > 0 {
		score += float64(len(commonTags)) * 10
		signals = append(signals, "共同标签 "+strings.Join(commonTags, "、"))
	}

	commonCast := intersect(seed.Cast, candidate.Cast)
	if len(commonCast) > 0 {
		score += float64(len(commonCast)) * 15
		signals = append(signals, "同样由 "+strings.Join(commonCast, "、")+" 出演")
	}

	score += math.Max(0, 20-4*math.Abs(seed.Rating-candidate.Rating))
	score = math.Min(score, 100)

	reason := "基于内容相似度推荐"
	if len(signals) > 0 {
		reason = strings.Join(signals, "，")
	}
	return score, reason
}

// weightedNames 取权重超过阈值的名称列表
func weightedNames(items []model.WeightedItem, floor float64) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.Weight > floor {
			names = append(names, item.Name)
		}
	}
	return names
}

// findWeight 在加权列表中查找名称
func findWeight(items []model.WeightedItem, name string) (float64, bool) {
	for _, item := range items {
		if item.Name == name {
			return item.Weight, true
		}
	}
	return 0, false
}

// intersect 两个字符串集合的交集
func intersect(a, b []string) []string {
	common := []string{}
	for _, x := range a {
		for _, y := range b {
			if x == y && x != "" {
				common = append(common, x)
				break
			}
		}
	}
	return common
}

// sortAndTruncate 按分数降序排列并截断
func sortAndTruncate(results []RecommendedDrama, limit int) []RecommendedDrama {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
