package repository

import (
	"testing"

	"github.com/user/shortdrama/internal/model"
)

func TestBuildSortClause(t *testing.T) {
	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		want      string
	}{
		{"评分降序", "rating", "desc", "rating DESC"},
		{"评分升序", "rating", "asc", "rating ASC"},
		{"驼峰参数映射列名", "viewCount", "desc", "view_count DESC"},
		{"上线日期", "releaseDate", "asc", "release_date ASC"},
		{"未知字段兜底", "evil; DROP TABLE dramas", "desc", "created_at DESC"},
		{"空参数兜底", "", "", "created_at DESC"},
		{"非法排序方向按降序", "title", "sideways", "title DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSortClause(tt.sortBy, tt.sortOrder)
			if got != tt.want {
				t.Errorf("BuildSortClause(%q, %q) = %q, want %q", tt.sortBy, tt.sortOrder, got, tt.want)
			}
		})
	}
}

// 三部热门剧（9.2/8.5/7.9）按评分降序每页 2 条：
// 第一页是前两部，total=3、pages=2
func TestHotRatingPaginationScenario(t *testing.T) {
	hot := true
	f := model.DramaFilter{IsHot: &hot, SortBy: "rating", SortOrder: "desc", Page: 1, Limit: 2}

	if got := BuildSortClause(f.SortBy, f.SortOrder); got != "rating DESC" {
		t.Fatalf("排序子句应为 rating DESC，实际 %q", got)
	}

	// 数据库按该子句返回的第一页
	firstPage := []model.Drama{
		{ID: 1, Title: "总裁一号", IsHot: true, Rating: 9.2},
		{ID: 2, Title: "总裁二号", IsHot: true, Rating: 8.5},
	}
	page := BuildDramaPage(firstPage, 3, f)

	if page.Total != 3 || page.Pages != 2 {
		t.Errorf("应为 total=3 pages=2，实际 total=%d pages=%d", page.Total, page.Pages)
	}
	if len(page.Items) != 2 || page.Items[0].Rating < page.Items[1].Rating {
		t.Errorf("第一页应为评分降序的前两部: %+v", page.Items)
	}
	if page.Page != 1 || page.Limit != 2 {
		t.Errorf("页码参数应原样带回，实际 page=%d limit=%d", page.Page, page.Limit)
	}
}

func TestBuildDramaPageCeiling(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		limit int
		want  int
	}{
		{"空结果零页", 0, 2, 0},
		{"整除", 4, 2, 2},
		{"有余数向上取整", 5, 2, 3},
		{"单条单页", 1, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := BuildDramaPage(nil, tt.total, model.DramaFilter{Page: 1, Limit: tt.limit})
			if page.Pages != tt.want {
				t.Errorf("total=%d limit=%d 应为 %d 页，实际 %d", tt.total, tt.limit, tt.want, page.Pages)
			}
		})
	}
}
