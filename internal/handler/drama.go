package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/shortdrama/internal/middleware"
	"github.com/user/shortdrama/internal/model"
	"github.com/user/shortdrama/internal/service"
	"github.com/user/shortdrama/internal/utils"
)

// ListDramas GET /api/v1/dramas
func (h *Handler) ListDramas(c *gin.Context) {
	filter := parseDramaFilter(c)

	page, err := h.Dramas.List(c.Request.Context(), filter)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, page)
}

// SearchDramas GET /api/v1/dramas/search
// 关键词从 q 读，其余过滤参数与列表接口一致
func (h *Handler) SearchDramas(c *gin.Context) {
	filter := parseDramaFilter(c)
	if filter.Search == "" {
		filter.Search = c.Query("q")
	}

	page, err := h.Dramas.List(c.Request.Context(), filter)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, page)
}

// GetDrama GET /api/v1/dramas/:id
func (h *Handler) GetDrama(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		utils.BadRequest(c, "无效的剧目 ID")
		return
	}

	drama, err := h.Dramas.Detail(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, drama)
}

// RecordView POST /api/v1/dramas/:id/view
func (h *Handler) RecordView(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		utils.BadRequest(c, "无效的剧目 ID")
		return
	}

	if err := h.Dramas.RecordView(id); err != nil {
		serviceError(c, err)
		return
	}

	// 已登录用户的浏览行为进入偏好学习
	if userID := middleware.GetUserID(c); userID > 0 {
		if err := h.Prefs.RecordAction(c.Request.Context(), userID, id, model.ActionView, 0, 0, 0); err != nil {
			serviceError(c, err)
			return
		}
	}

	utils.SuccessWithMessage(c, "浏览已记录", nil)
}

// RecordAction POST /api/v1/dramas/:id/actions（like/favorite/complete）
func (h *Handler) RecordAction(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		utils.BadRequest(c, "无效的剧目 ID")
		return
	}

	var req struct {
		Action      string `json:"action" binding:"required,oneof=view like favorite complete"`
		Episode     int    `json:"episode" binding:"omitempty,min=0"`
		ProgressSec int    `json:"progressSec" binding:"omitempty,min=0"`
		Minutes     int64  `json:"minutes" binding:"omitempty,min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.Prefs.RecordAction(c.Request.Context(), userID, id, req.Action, req.Episode, req.ProgressSec, req.Minutes); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "行为已记录", nil)
}

// HotDramas GET /api/v1/dramas/hot
func (h *Handler) HotDramas(c *gin.Context) {
	items, err := h.Dramas.Hot(c.Request.Context(), queryInt(c, "limit", 10))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, items)
}

// NewDramas GET /api/v1/dramas/new
func (h *Handler) NewDramas(c *gin.Context) {
	items, err := h.Dramas.New(c.Request.Context(), queryInt(c, "limit", 10))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, items)
}

// TrendingDramas GET /api/v1/dramas/trending
func (h *Handler) TrendingDramas(c *gin.Context) {
	items, err := h.Dramas.Trending(c.Request.Context(), queryInt(c, "limit", 10))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, items)
}

// DramaRecommendations GET /api/v1/dramas/:id/recommendations（相似推荐快捷入口）
func (h *Handler) DramaRecommendations(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		utils.BadRequest(c, "无效的剧目 ID")
		return
	}

	results, err := h.Recommend.Recommend(c.Request.Context(), service.RecommendRequest{
		Strategy: service.StrategySimilar,
		SeedID:   id,
		Limit:    queryInt(c, "limit", 10),
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, results)
}

// GeneralRecommendations GET /api/v1/dramas/recommendations
// 未指定策略时已登录走个性化（无画像自动回退热门），匿名走热门
func (h *Handler) GeneralRecommendations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	strategy := c.Query("type")
	if strategy == "" && userID > 0 {
		strategy = service.StrategyPersonalized
	}

	results, err := h.Recommend.Recommend(c.Request.Context(), service.RecommendRequest{
		Strategy: strategy,
		UserID:   userID,
		SeedID:   queryInt(c, "seedId", 0),
		Limit:    queryInt(c, "limit", 10),
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, results)
}

// parseDramaFilter 解析列表查询参数
func parseDramaFilter(c *gin.Context) model.DramaFilter {
	filter := model.DramaFilter{
		Category:  c.Query("category"),
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 20),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}

	if tags := c.Query("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}
	if v := c.Query("isHot"); v != "" {
		b := v == "true"
		filter.IsHot = &b
	}
	if v := c.Query("isNew"); v != "" {
		b := v == "true"
		filter.IsNew = &b
	}
	if v := c.Query("minRating"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinRating = &f
		}
	}
	if v := c.Query("maxRating"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxRating = &f
		}
	}
	if v := c.Query("releasedAfter"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.ReleasedAfter = &t
		}
	}
	if v := c.Query("releasedBefore"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.ReleasedBefore = &t
		}
	}

	return filter
}

// queryInt 查询参数转整数，解析失败用默认值
func queryInt(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil {
		return v
	}
	return fallback
}
