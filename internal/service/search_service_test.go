package service

import (
	"context"
	"sync"
	"testing"

	"github.com/user/shortdrama/internal/model"
)

type fakeSearchDramas struct {
	dramas []model.Drama
}

func (f *fakeSearchDramas) SearchText(_ string, _ int) ([]model.Drama, error) {
	return f.dramas, nil
}

type fakeSearchUsers struct {
	users []model.User
}

func (f *fakeSearchUsers) SearchText(_ string, _ int) ([]model.User, error) {
	return f.users, nil
}

type fakeSearchCategories struct {
	categories []model.Category
}

func (f *fakeSearchCategories) SearchByName(_ string, _ int) ([]model.Category, error) {
	return f.categories, nil
}

type fakeHistoryStore struct {
	mu      sync.Mutex
	entries []*model.SearchHistory
}

func (f *fakeHistoryStore) Log(entry *model.SearchHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistoryStore) ListByUser(_, _ int) ([]model.SearchHistory, error) { return nil, nil }
func (f *fakeHistoryStore) DeleteByUser(_ int) (int64, error)                  { return 0, nil }
func (f *fakeHistoryStore) PopularKeywords(_, _ int) ([]model.PopularKeyword, error) {
	return nil, nil
}
func (f *fakeHistoryStore) SuggestKeywords(_ string, _ int) ([]string, error) { return nil, nil }

func newTestSearch(dramas []model.Drama, users []model.User, categories []model.Category) *SearchService {
	return NewSearchService(
		&fakeSearchDramas{dramas: dramas},
		&fakeSearchUsers{users: users},
		&fakeSearchCategories{categories: categories},
		&fakeHistoryStore{},
		newTestCache(),
	)
}

func TestSearchMergesEntities(t *testing.T) {
	svc := newTestSearch(
		[]model.Drama{{ID: 1, Title: "总裁驾到", Description: "都市总裁短剧"}},
		[]model.User{{ID: 2, Username: "总裁本人"}},
		[]model.Category{{ID: 3, Name: "总裁", Description: "总裁题材"}},
	)

	resp, err := svc.Search(context.Background(), SearchRequest{Query: "总裁"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("三类实体各一条，total 应为 3，实际 %d", resp.Total)
	}

	types := map[string]bool{}
	for _, hit := range resp.Hits {
		types[hit.Type] = true
	}
	for _, want := range []string{HitTypeDrama, HitTypeUser, HitTypeCategory} {
		if !types[want] {
			t.Errorf("结果中缺少 %s 类型", want)
		}
	}

	// 分类名完全匹配应排最前
	if resp.Hits[0].Type != HitTypeCategory {
		t.Errorf("完全匹配应排第一，实际 %s（%v 分）", resp.Hits[0].Type, resp.Hits[0].Score)
	}
}

func TestSearchTypeFilter(t *testing.T) {
	svc := newTestSearch(
		[]model.Drama{{ID: 1, Title: "总裁驾到"}},
		[]model.User{{ID: 2, Username: "总裁本人"}},
		nil,
	)

	resp, err := svc.Search(context.Background(), SearchRequest{Query: "总裁", Type: HitTypeDrama})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, hit := range resp.Hits {
		if hit.Type != HitTypeDrama {
			t.Errorf("type=drama 时不应出现 %s", hit.Type)
		}
	}
}

func TestSearchPagination(t *testing.T) {
	dramas := []model.Drama{
		{ID: 1, Title: "总裁一号", IsHot: true, Rating: 9.0},
		{ID: 2, Title: "总裁二号", IsHot: true, Rating: 8.0},
		{ID: 3, Title: "总裁三号", IsHot: true, Rating: 7.0},
	}
	svc := newTestSearch(dramas, nil, nil)

	resp, err := svc.Search(context.Background(), SearchRequest{Query: "总裁", Limit: 2, Page: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 3 || resp.Pages != 2 {
		t.Errorf("3 条结果每页 2 条应为 2 页，实际 total=%d pages=%d", resp.Total, resp.Pages)
	}
	if len(resp.Hits) != 2 {
		t.Errorf("第一页应有 2 条，实际 %d", len(resp.Hits))
	}

	page2, err := svc.Search(context.Background(), SearchRequest{Query: "总裁", Limit: 2, Page: 2})
	if err != nil {
		t.Fatalf("Search 第二页: %v", err)
	}
	if len(page2.Hits) != 1 {
		t.Errorf("第二页应有 1 条，实际 %d", len(page2.Hits))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := newTestSearch(nil, nil, nil)

	resp, err := svc.Search(context.Background(), SearchRequest{Query: "   "})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 0 || len(resp.Hits) != 0 {
		t.Errorf("空查询应返回空结果: %+v", resp)
	}
}

func TestSearchRatingSort(t *testing.T) {
	dramas := []model.Drama{
		{ID: 1, Title: "总裁一号", Rating: 7.0},
		{ID: 2, Title: "总裁二号", Rating: 9.0},
		{ID: 3, Title: "总裁三号", Rating: 8.0},
	}
	svc := newTestSearch(dramas, nil, nil)

	resp, err := svc.Search(context.Background(), SearchRequest{Query: "总裁", SortBy: SearchSortRating})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i := 1; i < len(resp.Hits); i++ {
		if resp.Hits[i-1].Drama.Rating < resp.Hits[i].Drama.Rating {
			t.Fatalf("rating 排序应降序: %v", resp.Hits)
		}
	}
}
