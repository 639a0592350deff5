package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/shortdrama/internal/middleware"
	"github.com/user/shortdrama/internal/model"
	"github.com/user/shortdrama/internal/service"
	"github.com/user/shortdrama/internal/utils"
)

// DoSearch GET /api/v1/search
func (h *Handler) DoSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		query = c.Query("query")
	}

	resp, err := h.Search.Search(c.Request.Context(), service.SearchRequest{
		Query:     query,
		Type:      c.Query("type"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 20),
		UserID:    middleware.GetUserIDPtr(c),
		IPHash:    utils.HashIP(c.ClientIP()),
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, resp)
}

// SearchSuggestions GET /api/v1/search/suggestions
func (h *Handler) SearchSuggestions(c *gin.Context) {
	suggestions, err := h.Search.Suggestions(c.Query("q"), queryInt(c, "limit", 10))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, suggestions)
}

// PopularSearches GET /api/v1/search/popular
func (h *Handler) PopularSearches(c *gin.Context) {
	keywords, err := h.Search.Popular(c.Request.Context(), queryInt(c, "limit", 10))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, keywords)
}

// Recommendations GET /api/v1/search/recommendations/:type
func (h *Handler) Recommendations(c *gin.Context) {
	req := service.RecommendRequest{
		Strategy:       c.Param("type"),
		UserID:         middleware.GetUserID(c),
		SeedID:         queryInt(c, "seedId", 0),
		Limit:          queryInt(c, "limit", 10),
		ExcludeWatched: c.Query("excludeWatched") == "true",
	}
	if categories := c.Query("categories"); categories != "" {
		req.Categories = splitQueryList(categories)
	}

	results, err := h.Recommend.Recommend(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, results)
}

// Rankings GET /api/v1/search/rankings/:type
func (h *Handler) Rankings(c *gin.Context) {
	results, err := h.Ranking.Rankings(c.Request.Context(),
		c.Param("type"), c.Query("category"), queryInt(c, "limit", 20))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, results)
}

// RankingTrends GET /api/v1/search/rankings/:type/trends
func (h *Handler) RankingTrends(c *gin.Context) {
	results, err := h.Ranking.Trends(c.Request.Context(),
		c.Param("type"), c.Query("category"), queryInt(c, "limit", 20))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, results)
}

// GetPreferences GET /api/v1/search/preferences
func (h *Handler) GetPreferences(c *gin.Context) {
	pref, err := h.Prefs.Get(middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, pref)
}

// UpdatePreferences PUT /api/v1/search/preferences
func (h *Handler) UpdatePreferences(c *gin.Context) {
	var req model.UserPreference
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	pref, err := h.Prefs.Update(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "偏好已更新", pref)
}

// splitQueryList 逗号分隔的查询参数转切片
func splitQueryList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// SearchHistory GET /api/v1/search/history
func (h *Handler) SearchHistory(c *gin.Context) {
	entries, err := h.Search.History(middleware.GetUserID(c), queryInt(c, "limit", 20))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, entries)
}

// ClearSearchHistory DELETE /api/v1/search/history
func (h *Handler) ClearSearchHistory(c *gin.Context) {
	deleted, err := h.Search.ClearHistory(middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "搜索历史已清空", gin.H{"deleted": deleted})
}
