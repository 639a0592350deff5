package service

import (
	"context"
	"testing"

	"github.com/user/shortdrama/internal/cache"
	"github.com/user/shortdrama/internal/model"
)

type fakeRecommendStore struct {
	byID       map[int]*model.Drama
	similar    []model.Drama
	hot        []model.Drama
	trending   []model.Drama
	byCategory []model.Drama
}

func (f *fakeRecommendStore) FindByID(id int) (*model.Drama, error) { return f.byID[id], nil }
func (f *fakeRecommendStore) FindSimilarCandidates(_ *model.Drama, _ int) ([]model.Drama, error) {
	return f.similar, nil
}
func (f *fakeRecommendStore) FindPersonalizedCandidates(_, _ []string, _ []int, _ int) ([]model.Drama, error) {
	return f.similar, nil
}
func (f *fakeRecommendStore) FindTrendingCandidates(_ int) ([]model.Drama, error) {
	return f.trending, nil
}
func (f *fakeRecommendStore) FindByFlag(_ string, _ int) ([]model.Drama, error) { return f.hot, nil }
func (f *fakeRecommendStore) FindByCategories(_ []string, _ int) ([]model.Drama, error) {
	return f.byCategory, nil
}

type fakePrefStore struct {
	pref *model.UserPreference
}

func (f *fakePrefStore) FindByUser(_ int) (*model.UserPreference, error) { return f.pref, nil }

type fakeWatchedStore struct {
	ids []int
}

func (f *fakeWatchedStore) WatchedDramaIDs(_ int) ([]int, error) { return f.ids, nil }

func newTestCache() *cache.Cache {
	return cache.New(cache.NewMemoryStore())
}

func TestScoreSimilar(t *testing.T) {
	seed := &model.Drama{
		ID:       1,
		Category: "都市",
		Tags:     []string{"逆袭", "豪门"},
		Cast:     []string{"张三", "李四"},
		Rating:   8.5,
	}

	t.Run("全部重合得满分", func(t *testing.T) {
		twin := &model.Drama{
			ID:       2,
			Category: "都市",
			Tags:     []string{"逆袭", "豪门"},
			Cast:     []string{"张三", "李四"},
			Rating:   8.5,
		}
		// 30 + 2×10 + 2×15 + 20 = 100，正好触到上限
		score, _ := ScoreSimilar(seed, twin)
		if score != 100 {
			t.Errorf("完全重合应为 100，实际 %v", score)
		}
	})

	t.Run("毫无重合且评分悬殊得零分", func(t *testing.T) {
		stranger := &model.Drama{
			ID:       3,
			Category: "古装",
			Tags:     []string{"宫斗"},
			Cast:     []string{"王五"},
			Rating:   2.0,
		}
		score, _ := ScoreSimilar(seed, stranger)
		if score != 0 {
			t.Errorf("无重合且评分差超过 5 应为 0，实际 %v", score)
		}
	})

	t.Run("评分相近有保底分", func(t *testing.T) {
		near := &model.Drama{ID: 4, Category: "古装", Rating: 8.0}
		score, _ := ScoreSimilar(seed, near)
		if score != 18 {
			t.Errorf("仅评分相近应为 20−4×0.5=18，实际 %v", score)
		}
	})
}

func TestScorePersonalized(t *testing.T) {
	pref := &model.UserPreference{
		Categories:      []model.WeightedItem{{Name: "都市", Weight: 1.0}},
		Tags:            []model.WeightedItem{{Name: "逆袭", Weight: 0.5}},
		Actors:          []model.WeightedItem{{Name: "张三", Weight: 0.8}},
		PreferredRating: 8.0,
	}

	drama := &model.Drama{
		Category: "都市",
		Tags:     []string{"逆袭"},
		Cast:     []string{"张三"},
		Rating:   8.0,
	}

	// 1.0×40 + 0.5×20 + 0.8×15 + 25 = 87
	score, reason := scorePersonalized(drama, pref)
	if score != 87 {
		t.Errorf("期望 87，实际 %v", score)
	}
	if reason == "" {
		t.Error("命中偏好时应给出推荐理由")
	}

	// 全部权重拉满时封顶 100
	maxPref := &model.UserPreference{
		Categories:      []model.WeightedItem{{Name: "都市", Weight: 1.0}},
		Tags:            []model.WeightedItem{{Name: "逆袭", Weight: 1.0}, {Name: "豪门", Weight: 1.0}},
		Actors:          []model.WeightedItem{{Name: "张三", Weight: 1.0}, {Name: "李四", Weight: 1.0}},
		PreferredRating: 8.0,
	}
	rich := &model.Drama{
		Category: "都市",
		Tags:     []string{"逆袭", "豪门"},
		Cast:     []string{"张三", "李四"},
		Rating:   8.0,
	}
	score, _ = scorePersonalized(rich, maxPref)
	if score != 100 {
		t.Errorf("得分应封顶 100，实际 %v", score)
	}
}

func TestRecommendHotStrategy(t *testing.T) {
	store := &fakeRecommendStore{
		hot: []model.Drama{
			{ID: 1, IsHot: true, Rating: 9.0, ViewCount: 1000},
			{ID: 2, IsHot: true, Rating: 7.5, ViewCount: 5000},
			{ID: 3, IsHot: true, Rating: 8.2, ViewCount: 200},
		},
	}
	svc := NewRecommendService(store, &fakePrefStore{}, &fakeWatchedStore{}, newTestCache())

	results, err := svc.Recommend(context.Background(), RecommendRequest{Strategy: StrategyHot, Limit: 10})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("期望 3 条结果，实际 %d", len(results))
	}

	for _, r := range results {
		if !r.Drama.IsHot {
			t.Errorf("hot 策略结果应全部带 isHot 标记: %+v", r.Drama)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Fatalf("结果应按分数降序: %v", results)
		}
	}
}

func TestRecommendPersonalizedFallsBackToHot(t *testing.T) {
	store := &fakeRecommendStore{
		hot: []model.Drama{{ID: 1, IsHot: true, Rating: 9.0}},
	}
	// 无偏好画像
	svc := NewRecommendService(store, &fakePrefStore{pref: nil}, &fakeWatchedStore{}, newTestCache())

	results, err := svc.Recommend(context.Background(), RecommendRequest{
		Strategy: StrategyPersonalized,
		UserID:   42,
		Limit:    5,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(results) != 1 || !results[0].Drama.IsHot {
		t.Errorf("无画像时应回退到热门策略，实际 %+v", results)
	}
}

func TestRecommendSimilarSeedNotFound(t *testing.T) {
	svc := NewRecommendService(&fakeRecommendStore{byID: map[int]*model.Drama{}},
		&fakePrefStore{}, &fakeWatchedStore{}, newTestCache())

	_, err := svc.Recommend(context.Background(), RecommendRequest{
		Strategy: StrategySimilar,
		SeedID:   999,
	})
	if err != ErrNotFound {
		t.Errorf("种子不存在应返回 ErrNotFound，实际 %v", err)
	}
}

func TestRecommendLimitTruncation(t *testing.T) {
	hot := make([]model.Drama, 20)
	for i := range hot {
		hot[i] = model.Drama{ID: i + 1, IsHot: true, Rating: float64(i%10) + 0.5}
	}
	svc := NewRecommendService(&fakeRecommendStore{hot: hot},
		&fakePrefStore{}, &fakeWatchedStore{}, newTestCache())

	results, err := svc.Recommend(context.Background(), RecommendRequest{Strategy: StrategyHot, Limit: 5})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("结果应截断到 limit=5，实际 %d", len(results))
	}
}
