package service

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/user/shortdrama/internal/model"
)

type fakeRankingStore struct {
	dramas []model.Drama
}

func (f *fakeRankingStore) FindUpdatedBetween(_, _ time.Time, _ string, _ int) ([]model.Drama, error) {
	return f.dramas, nil
}

func TestScoreRankingOrderAndRanks(t *testing.T) {
	now := time.Now()
	candidates := []model.Drama{
		{ID: 1, ViewCount: 100, Rating: 5.0, UpdatedAt: now},
		{ID: 2, ViewCount: 100000, Rating: 9.5, UpdatedAt: now},
		{ID: 3, ViewCount: 5000, Rating: 7.0, UpdatedAt: now},
	}

	ranked := ScoreRanking(WindowWeekly, candidates, now)

	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Score < ranked[i].Score {
			t.Fatalf("得分应降序: %v", ranked)
		}
	}
	for i, item := range ranked {
		if item.Rank != i+1 {
			t.Fatalf("名次应从 1 起连续，位置 %d 的名次为 %d", i, item.Rank)
		}
	}
	if ranked[0].Drama.ID != 2 {
		t.Errorf("浏览与评分都最高的剧目应排第一，实际 %d", ranked[0].Drama.ID)
	}
}

func TestProperty_ScoreRanking(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	now := time.Now()
	candidatesGen := gen.SliceOf(gen.IntRange(0, 1000000).Map(func(views int) model.Drama {
		return model.Drama{ViewCount: int64(views), Rating: float64(views % 11), UpdatedAt: now}
	}))

	properties.Property("任意候选集得分降序且名次连续", prop.ForAll(
		func(candidates []model.Drama) bool {
			ranked := ScoreRanking(WindowDaily, candidates, now)
			if len(ranked) != len(candidates) {
				return false
			}
			for i := range ranked {
				if ranked[i].Rank != i+1 {
					return false
				}
				if i > 0 && ranked[i-1].Score < ranked[i].Score {
					return false
				}
			}
			return true
		},
		candidatesGen,
	))

	properties.TestingRun(t)
}

func TestTimeDecay(t *testing.T) {
	tests := []struct {
		name   string
		window string
		hours  float64
		want   float64
	}{
		{"daily 刚更新无衰减", WindowDaily, 0, 1},
		{"daily 24 小时衰减一半", WindowDaily, 24, 0.5},
		{"daily 下限 0.5", WindowDaily, 100, 0.5},
		{"weekly 下限 0.7", WindowWeekly, 1000, 0.7},
		{"monthly 不衰减", WindowMonthly, 1000, 1},
		{"all-time 不衰减", WindowAllTime, 1000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timeDecay(tt.window, time.Duration(tt.hours*float64(time.Hour)))
			if got != tt.want {
				t.Errorf("timeDecay(%s, %vh) = %v, want %v", tt.window, tt.hours, got, tt.want)
			}
		})
	}
}

func TestScoreRankingBoosts(t *testing.T) {
	now := time.Now()
	base := model.Drama{ID: 1, ViewCount: 1000, Rating: 8.0, UpdatedAt: now}
	hot := base
	hot.ID = 2
	hot.IsHot = true

	ranked := ScoreRanking(WindowAllTime, []model.Drama{base, hot}, now)
	if ranked[0].Drama.ID != 2 {
		t.Fatalf("isHot 加成应使同指标剧目排前，实际第一名 %d", ranked[0].Drama.ID)
	}

	ratio := ranked[0].Score / ranked[1].Score
	if ratio < 1.09 || ratio > 1.11 {
		t.Errorf("isHot 加成应为 1.1 倍，实际 %v", ratio)
	}
}

func TestRankingsWindowFallback(t *testing.T) {
	store := &fakeRankingStore{dramas: []model.Drama{
		{ID: 1, ViewCount: 10, Rating: 6.0, UpdatedAt: time.Now()},
	}}
	svc := NewRankingService(store, newTestCache())

	// 未知窗口退化为 all-time，且不报错
	ranked, err := svc.Rankings(context.Background(), "yearly", "", 10)
	if err != nil {
		t.Fatalf("Rankings: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Rank != 1 {
		t.Errorf("期望 1 条名次为 1 的结果，实际 %+v", ranked)
	}
}

func TestTrendsRankChange(t *testing.T) {
	store := &fakeRankingStore{dramas: []model.Drama{
		{ID: 1, ViewCount: 500, Rating: 8.0, UpdatedAt: time.Now()},
		{ID: 2, ViewCount: 300, Rating: 7.0, UpdatedAt: time.Now()},
	}}
	svc := NewRankingService(store, newTestCache())

	trends, err := svc.Trends(context.Background(), WindowWeekly, "", 10)
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	// 两个窗口候选相同，名次无变化
	for _, trend := range trends {
		if trend.IsNewEntry {
			t.Errorf("候选相同不应出现新上榜: %+v", trend)
		}
		if trend.RankChange != 0 {
			t.Errorf("候选相同名次变化应为 0: %+v", trend)
		}
	}
}
