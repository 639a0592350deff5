package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/user/shortdrama/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLearnItemBoostAndDecay(t *testing.T) {
	items := []model.WeightedItem{
		{Name: "都市", Weight: 0.5},
		{Name: "古装", Weight: 0.5},
	}

	updated := learnItem(items, []string{"都市"}, boostLike, model.MaxPreferredCategories)

	var hit, miss float64
	for _, item := range updated {
		switch item.Name {
		case "都市":
			hit = item.Weight
		case "古装":
			miss = item.Weight
		}
	}
	if !approx(hit, 0.6) {
		t.Errorf("命中项应 +0.1，实际 %v", hit)
	}
	if !approx(miss, 0.48) {
		t.Errorf("未命中项应 −0.02，实际 %v", miss)
	}
}

func TestLearnItemClampsToOne(t *testing.T) {
	items := []model.WeightedItem{{Name: "都市", Weight: 0.95}}
	updated := learnItem(items, []string{"都市"}, boostComplete, model.MaxPreferredCategories)
	if updated[0].Weight != 1 {
		t.Errorf("权重应裁剪到 1，实际 %v", updated[0].Weight)
	}
}

func TestLearnItemDropsZeroWeight(t *testing.T) {
	items := []model.WeightedItem{{Name: "古装", Weight: 0.01}}
	updated := learnItem(items, nil, boostView, model.MaxPreferredCategories)
	if len(updated) != 0 {
		t.Errorf("衰减到 0 的项应被移除，实际 %v", updated)
	}
}

func TestLearnItemAddsNewAndTruncates(t *testing.T) {
	items := make([]model.WeightedItem, model.MaxPreferredTags)
	for i := range items {
		items[i] = model.WeightedItem{Name: fmt.Sprintf("tag%d", i), Weight: 0.9}
	}

	updated := learnItem(items, []string{"全新标签"}, boostFavorite, model.MaxPreferredTags)
	if len(updated) != model.MaxPreferredTags {
		t.Errorf("列表长度应不超过上限 %d，实际 %d", model.MaxPreferredTags, len(updated))
	}

	// 新项权重仅 0.15，低于现存项衰减后的 0.88，应被截断掉
	for _, item := range updated {
		if item.Name == "全新标签" {
			t.Error("低权新项在满列表时应被截断")
		}
	}
}

func TestNormalizeWeights(t *testing.T) {
	items := []model.WeightedItem{
		{Name: "a", Weight: 1.5},
		{Name: "b", Weight: -0.3},
		{Name: "", Weight: 0.8},
		{Name: "c", Weight: 0.6},
	}

	cleaned := normalizeWeights(items, 2)

	if len(cleaned) != 2 {
		t.Fatalf("应截断到上限 2，实际 %d", len(cleaned))
	}
	// 排序后 a(1.0) > c(0.6)
	if cleaned[0].Name != "a" || cleaned[0].Weight != 1 {
		t.Errorf("越界权重应裁剪到 1 且按权重排序: %v", cleaned)
	}
	if cleaned[1].Name != "c" {
		t.Errorf("空名项应被剔除: %v", cleaned)
	}
}

type fakePrefRepository struct {
	saved *model.UserPreference
}

func (f *fakePrefRepository) FindByUser(_ int) (*model.UserPreference, error) {
	return f.saved, nil
}

func (f *fakePrefRepository) Save(pref *model.UserPreference) error {
	f.saved = pref
	return nil
}

func (f *fakePrefRepository) Delete(_ int) error {
	f.saved = nil
	return nil
}

type fakePrefDramaStore struct {
	drama     *model.Drama
	favorites int64
}

func (f *fakePrefDramaStore) FindByID(_ int) (*model.Drama, error) { return f.drama, nil }

func (f *fakePrefDramaStore) AddCounters(_ int, _, favorites int64) error {
	f.favorites += favorites
	return nil
}

type fakePrefWatchStore struct {
	entries []*model.WatchHistory
}

func (f *fakePrefWatchStore) Upsert(entry *model.WatchHistory) error {
	f.entries = append(f.entries, entry)
	return nil
}

func TestRecordActionLearnsPreferences(t *testing.T) {
	repo := &fakePrefRepository{}
	dramas := &fakePrefDramaStore{drama: &model.Drama{
		ID:       1,
		Category: "都市",
		Tags:     []string{"逆袭"},
		Cast:     []string{"张三"},
		Rating:   8.0,
	}}
	watch := &fakePrefWatchStore{}
	svc := NewPreferenceService(repo, dramas, watch, newTestCache())

	if err := svc.RecordAction(context.Background(), 1, 1, model.ActionFavorite, 3, 120, 15); err != nil {
		t.Fatalf("RecordAction: %v", err)
	}

	pref := repo.saved
	if pref == nil {
		t.Fatal("行为应落库偏好画像")
	}
	if len(pref.Categories) != 1 || pref.Categories[0].Name != "都市" || pref.Categories[0].Weight != boostFavorite {
		t.Errorf("首次收藏应新建分类权重 %v: %v", boostFavorite, pref.Categories)
	}
	if pref.PreferredRating != 8.0 {
		t.Errorf("首个样本应初始化偏好评分，实际 %v", pref.PreferredRating)
	}
	if len(watch.entries) != 1 || watch.entries[0].Episode != 3 {
		t.Errorf("观看进度应落库: %+v", watch.entries)
	}
	if dramas.favorites != 1 {
		t.Errorf("收藏行为应同步剧目收藏计数，实际 %d", dramas.favorites)
	}

	stats := pref.Viewing.Data()
	if stats.SessionCount != 1 || stats.TotalMinutes != 15 {
		t.Errorf("观看统计应累计: %+v", stats)
	}
}

func TestRecordActionUnknownDrama(t *testing.T) {
	svc := NewPreferenceService(&fakePrefRepository{}, &fakePrefDramaStore{}, &fakePrefWatchStore{}, newTestCache())
	if err := svc.RecordAction(context.Background(), 1, 99, model.ActionView, 0, 0, 0); err != ErrNotFound {
		t.Errorf("剧目不存在应返回 ErrNotFound，实际 %v", err)
	}
}
