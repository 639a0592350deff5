package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/user/shortdrama/internal/cache"
	"github.com/user/shortdrama/internal/model"
	"github.com/user/shortdrama/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// 搜索结果类型
const (
	HitTypeDrama    = "drama"
	HitTypeUser     = "user"
	HitTypeCategory = "category"
)

// 搜索排序键
const (
	SearchSortRelevance = "relevance"
	SearchSortRating    = "rating"
	SearchSortViews     = "views"
	SearchSortDate      = "date"
)

// 高亮摘录的上下文半径（字符数）
const highlightRadius = 20

// SearchRequest 搜索请求
type SearchRequest struct {
	Query     string
	Type      string // 空表示全部类型
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
	UserID    *int
	IPHash    string
}

// SearchHit 单条搜索结果
type SearchHit struct {
	Type      string          `json:"type"`
	Score     float64         `json:"score"`
	Highlight string          `json:"highlight,omitempty"`
	Drama     *model.Drama    `json:"drama,omitempty"`
	User      *model.User     `json:"user,omitempty"`
	Category  *model.Category `json:"category,omitempty"`
}

// SearchResponse 搜索响应
type SearchResponse struct {
	Hits  []SearchHit `json:"hits"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Pages int         `json:"pages"`
	Query string      `json:"query"`
}

type dramaSearcher interface {
	SearchText(keyword string, limit int) ([]model.Drama, error)
}

type userSearcher interface {
	SearchText(keyword string, limit int) ([]model.User, error)
}

type categorySearcher interface {
	SearchByName(keyword string, limit int) ([]model.Category, error)
}

type searchHistoryStore interface {
	Log(entry *model.SearchHistory) error
	ListByUser(userID, limit int) ([]model.SearchHistory, error)
	DeleteByUser(userID int) (int64, error)
	PopularKeywords(hours, limit int) ([]model.PopularKeyword, error)
	SuggestKeywords(prefix string, limit int) ([]string, error)
}

// SearchService 搜索服务：三类实体并发检索后按相关度合并
type SearchService struct {
	dramas     dramaSearcher
	users      userSearcher
	categories categorySearcher
	history    searchHistoryStore
	cache      *cache.Cache

	// 建议词走进程内 LRU，避免每次击打数据库
	suggestCache *utils.LocalCache[[]string]
}

// NewSearchService 创建搜索服务
func NewSearchService(dramas dramaSearcher, users userSearcher, categories categorySearcher, history searchHistoryStore, c *cache.Cache) *SearchService {
	return &SearchService{
		dramas:       dramas,
		users:        users,
		categories:   categories,
		history:      history,
		cache:        c,
		suggestCache: utils.NewLocalCache[[]string](1000, 10*time.Minute),
	}
}

// Search 全文搜索：三类实体并发检索、打分、合并、排序、分页
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return &SearchResponse{Hits: []SearchHit{}, Query: query}, nil
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 50 {
		req.Limit = 20
	}

	key := cache.Key(cache.PrefixSearch, query, req.Type, req.SortBy, req.SortOrder, req.Page, req.Limit)
	resp, err := cache.Fetch(ctx, s.cache, key, cache.TTLSearch, func() (*SearchResponse, error) {
		return s.search(ctx, query, req)
	})
	if err != nil {
		return nil, err
	}

	// 搜索历史异步落库，失败不影响请求
	go s.logSearch(query, req, resp.Total)

	return resp, nil
}

func (s *SearchService) search(ctx context.Context, query string, req SearchRequest) (*SearchResponse, error) {
	var (
		dramas     []model.Drama
		users      []model.User
		categories []model.Category
	)

	// 三类实体并发检索
	g, _ := errgroup.WithContext(ctx)
	if req.Type == "" || req.Type == HitTypeDrama {
		g.Go(func() error {
			var err error
			dramas, err = s.dramas.SearchText(query, 100)
			return err
		})
	}
	if req.Type == "" || req.Type == HitTypeUser {
		g.Go(func() error {
			var err error
			users, err = s.users.SearchText(query, 50)
			return err
		})
	}
	if req.Type == "" || req.Type == HitTypeCategory {
		g.Go(func() error {
			var err error
			categories, err = s.categories.SearchByName(query, 20)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(dramas)+len(users)+len(categories))
	for i := range dramas {
		d := dramas[i]
		score := ScoreRelevance(query, d.Title, d.Description)
		hits = append(hits, SearchHit{
			Type:      HitTypeDrama,
			Score:     score,
			Highlight: HighlightExcerpt(d.Description, query),
			Drama:     &d,
		})
	}
	for i := range users {
		u := users[i]
		profile := u.Profile.Data()
		score := ScoreRelevance(query, u.Username, profile.Bio)
		hits = append(hits, SearchHit{
			Type:      HitTypeUser,
			Score:     score,
			Highlight: HighlightExcerpt(profile.Bio, query),
			User:      &u,
		})
	}
	for i := range categories {
		cat := categories[i]
		score := ScoreRelevance(query, cat.Name, cat.Description)
		hits = append(hits, SearchHit{
			Type:      HitTypeCategory,
			Score:     score,
			Highlight: HighlightExcerpt(cat.Description, query),
			Category:  &cat,
		})
	}

	sortHits(hits, req.SortBy, req.SortOrder)

	total := len(hits)
	pages := (total + req.Limit - 1) / req.Limit
	offset := (req.Page - 1) * req.Limit
	if offset > total {
		offset = total
	}
	end := offset + req.Limit
	if end > total {
		end = total
	}

	return &SearchResponse{
		Hits:  hits[offset:end],
		Total: total,
		Page:  req.Page,
		Limit: req.Limit,
		Pages: pages,
		Query: query,
	}, nil
}

func (s *SearchService) logSearch(query string, req SearchRequest, resultCount int) {
	entry := &model.SearchHistory{
		UserID: req.UserID,
		Query:  query,
		Filters: datatypes.NewJSONType(model.SearchFilters{
			Type:      req.Type,
			SortBy:    req.SortBy,
			SortOrder: req.SortOrder,
		}),
		ResultCount: resultCount,
		IPHash:      req.IPHash,
	}
	if err := s.history.Log(entry); err != nil {
		log.Warn().Err(err).Str("query", query).Msg("搜索历史写入失败")
	}
}

// Suggestions 搜索建议词：历史查询词前缀匹配
func (s *SearchService) Suggestions(prefix string, limit int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}
	if limit < 1 || limit > 20 {
		limit = 10
	}

	key := cache.Key("suggest", prefix, limit)
	if cached, found := s.suggestCache.Get(key); found {
		return cached, nil
	}

	keywords, err := s.history.SuggestKeywords(prefix, limit)
	if err != nil {
		return nil, err
	}
	s.suggestCache.Set(key, keywords)
	return keywords, nil
}

// Popular 热搜词（24 小时窗口聚合）
func (s *SearchService) Popular(ctx context.Context, limit int) ([]model.PopularKeyword, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	key := cache.Key(cache.PrefixSearch, "popular", limit)
	return cache.Fetch(ctx, s.cache, key, cache.TTLSearch, func() ([]model.PopularKeyword, error) {
		return s.history.PopularKeywords(24, limit)
	})
}

// History 用户搜索历史
func (s *SearchService) History(userID, limit int) ([]model.SearchHistory, error) {
	return s.history.ListByUser(userID, limit)
}

// ClearHistory 清空用户搜索历史
func (s *SearchService) ClearHistory(userID int) (int64, error) {
	return s.history.DeleteByUser(userID)
}

// ScoreRelevance 相关度打分：
// 完全匹配 100 / 子串命中 80（前缀命中同属子串），描述含词 +20，
// 再加 40×归一化编辑距离相似度
func ScoreRelevance(query, title, description string) float64 {
	q := strings.ToLower(query)
	t := strings.ToLower(title)

	var score float64
	switch {
	case t == q:
		score = 100
	case strings.Contains(t, q):
		score = 80
	}

	if description != "" && strings.Contains(strings.ToLower(description), q) {
		score += 20
	}

	score += 40 * StringSimilarity(q, t)
	return score
}

// StringSimilarity 归一化编辑距离相似度：1 − levenshtein/max(len1,len2)
func StringSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(maxLen)
}

// levenshtein 经典两行 DP 编辑距离
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// HighlightExcerpt 在文本中定位查询词，返回 ±20 字符的上下文摘录（带省略号）
func HighlightExcerpt(text, query string) string {
	if text == "" || query == "" {
		return ""
	}

	runes := []rune(text)
	lower := strings.ToLower(text)
	idx := strings.Index(lower, strings.ToLower(query))
	if idx < 0 {
		return ""
	}

	// 字节偏移换算为字符偏移
	charIdx := len([]rune(text[:idx]))
	queryLen := len([]rune(query))

	start := charIdx - highlightRadius
	if start < 0 {
		start = 0
	}
	end := charIdx + queryLen + highlightRadius
	if end > len(runes) {
		end = len(runes)
	}

	excerpt := string(runes[start:end])
	if start > 0 {
		excerpt = "..." + excerpt
	}
	if end < len(runes) {
		excerpt += "..."
	}
	return excerpt
}

// sortHits 按请求的排序键排列
func sortHits(hits []SearchHit, sortBy, sortOrder string) {
	asc := sortOrder == "asc"
	less := func(a, b float64) bool {
		if asc {
			return a < b
		}
		return a > b
	}

	sort.SliceStable(hits, func(i, j int) bool {
		switch sortBy {
		case SearchSortRating:
			return less(hitRating(hits[i]), hitRating(hits[j]))
		case SearchSortViews:
			return less(hitViews(hits[i]), hitViews(hits[j]))
		case SearchSortDate:
			return less(hitDate(hits[i]), hitDate(hits[j]))
		default:
			return less(hits[i].Score, hits[j].Score)
		}
	})
}

func hitRating(h SearchHit) float64 {
	if h.Drama != nil {
		return h.Drama.Rating
	}
	return 0
}

func hitViews(h SearchHit) float64 {
	if h.Drama != nil {
		return float64(h.Drama.ViewCount)
	}
	return 0
}

func hitDate(h SearchHit) float64 {
	if h.Drama != nil {
		return float64(h.Drama.ReleaseDate.Unix())
	}
	return 0
}
