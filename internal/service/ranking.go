package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/user/shortdrama/internal/cache"
	"github.com/user/shortdrama/internal/model"
)

// 排行时间窗
const (
	WindowDaily   = "daily"
	WindowWeekly  = "weekly"
	WindowMonthly = "monthly"
	WindowAllTime = "all-time"
)

// rankingWeights 各指标权重：短窗口偏重浏览与互动，全量榜偏重评分与收藏
type rankingWeights struct {
	Views     float64
	Rating    float64
	Comments  float64
	Favorites float64
}

var windowWeights = map[string]rankingWeights{
	WindowDaily:   {Views: 10, Rating: 5, Comments: 4, Favorites: 3},
	WindowWeekly:  {Views: 9, Rating: 6, Comments: 3.5, Favorites: 3.5},
	WindowMonthly: {Views: 7, Rating: 7, Comments: 3, Favorites: 4},
	WindowAllTime: {Views: 5, Rating: 9, Comments: 2, Favorites: 6},
}

// RankedDrama 排行榜条目
type RankedDrama struct {
	Rank  int         `json:"rank"`
	Drama model.Drama `json:"drama"`
	Score float64     `json:"score"`

	// 原始指标
	Views     int64   `json:"views"`
	Rating    float64 `json:"rating"`
	Comments  int64   `json:"comments"`
	Favorites int64   `json:"favorites"`
}

// RankingTrend 与上一窗口的名次对比
type RankingTrend struct {
	Rank       int         `json:"rank"`
	Drama      model.Drama `json:"drama"`
	Score      float64     `json:"score"`
	PrevRank   int         `json:"prevRank"`   // 0 表示上一窗口未上榜
	RankChange int         `json:"rankChange"` // 正数为上升
	IsNewEntry bool        `json:"isNewEntry"`
}

type rankingDramaStore interface {
	FindUpdatedBetween(start, end time.Time, category string, limit int) ([]model.Drama, error)
}

// RankingService 排行服务
type RankingService struct {
	dramas rankingDramaStore
	cache  *cache.Cache
	now    func() time.Time
}

// NewRankingService 创建排行服务
func NewRankingService(dramas rankingDramaStore, c *cache.Cache) *RankingService {
	return &RankingService{dramas: dramas, cache: c, now: time.Now}
}

// Rankings 计算时间窗排行榜，结果经缓存层（排行 TTL 2 小时）
func (s *RankingService) Rankings(ctx context.Context, window, category string, limit int) ([]RankedDrama, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if _, ok := windowWeights[window]; !ok {
		window = WindowAllTime
	}

	key := cache.Key(cache.PrefixRanking, window, category, limit)
	return cache.Fetch(ctx, s.cache, key, cache.TTLRanking, func() ([]RankedDrama, error) {
		end := s.now()
		start := windowStart(window, end)
		return s.compute(window, category, start, end, limit)
	})
}

// Trends 当前窗口与上一等长窗口的名次对比
func (s *RankingService) Trends(ctx context.Context, window, category string, limit int) ([]RankingTrend, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if _, ok := windowWeights[window]; !ok || window == WindowAllTime {
		// all-time 没有上一窗口可比
		window = WindowWeekly
	}

	key := cache.Key(cache.PrefixRanking, "trends", window, category, limit)
	return cache.Fetch(ctx, s.cache, key, cache.TTLRanking, func() ([]RankingTrend, error) {
		end := s.now()
		start := windowStart(window, end)
		prevStart := windowStart(window, start)

		current, err := s.compute(window, category, start, end, limit)
		if err != nil {
			return nil, err
		}
		previous, err := s.compute(window, category, prevStart, start, limit*2)
		if err != nil {
			return nil, err
		}

		prevRanks := make(map[int]int, len(previous))
		for _, item := range previous {
			prevRanks[item.Drama.ID] = item.Rank
		}

		trends := make([]RankingTrend, 0, len(current))
		for _, item := range current {
			prev, found := prevRanks[item.Drama.ID]
			trend := RankingTrend{
				Rank:       item.Rank,
				Drama:      item.Drama,
				Score:      item.Score,
				PrevRank:   prev,
				IsNewEntry: !found,
			}
			if found {
				trend.RankChange = prev - item.Rank
			}
			trends = append(trends, trend)
		}
		return trends, nil
	})
}

func (s *RankingService) compute(window, category string, start, end time.Time, limit int) ([]RankedDrama, error) {
	// all-time 不限时间窗
	if window == WindowAllTime {
		start = time.Time{}
	}

	candidates, err := s.dramas.FindUpdatedBetween(start, end, category, limit*3)
	if err != nil {
		return nil, err
	}

	ranked := ScoreRanking(window, candidates, end)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// ScoreRanking 对候选集合打分并产出 1 起的连续名次
func ScoreRanking(window string, candidates []model.Drama, now time.Time) []RankedDrama {
	weights, ok := windowWeights[window]
	if !ok {
		weights = windowWeights[WindowAllTime]
	}

	ranked := make([]RankedDrama, 0, len(candidates))
	for _, d := range candidates {
		score := weights.Views*math.Log10(float64(d.ViewCount)+1) +
			weights.Rating*d.Rating +
			weights.Comments*math.Log10(float64(d.CommentCount)+1) +
			weights.Favorites*math.Log10(float64(d.FavoriteCount)+1)

		score *= timeDecay(window, now.Sub(d.UpdatedAt))

		// 热门/新剧的固定加成
		if d.IsHot {
			score *= 1.1
		}
		if d.IsNewDrama {
			score *= 1.05
		}

		ranked = append(ranked, RankedDrama{
			Drama:     d,
			Score:     score,
			Views:     d.ViewCount,
			Rating:    d.Rating,
			Comments:  d.CommentCount,
			Favorites: d.FavoriteCount,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// timeDecay 短窗口的线性时间衰减
func timeDecay(window string, sinceUpdate time.Duration) float64 {
	hours := sinceUpdate.Hours()
	if hours < 0 {
		hours = 0
	}
	switch window {
	case WindowDaily:
		return math.Max(0.5, 1-hours/48)
	case WindowWeekly:
		return math.Max(0.7, 1-hours/336)
	default:
		return 1
	}
}

// windowStart 计算窗口起点
func windowStart(window string, end time.Time) time.Time {
	switch window {
	case WindowDaily:
		return end.Add(-24 * time.Hour)
	case WindowWeekly:
		return end.Add(-7 * 24 * time.Hour)
	case WindowMonthly:
		return end.Add(-30 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}
