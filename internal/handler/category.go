package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/shortdrama/internal/model"
	"github.com/user/shortdrama/internal/utils"
)

// ListCategories GET /api/v1/categories
func (h *Handler) ListCategories(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"
	categories, err := h.Categories.List(c.Request.Context(), includeInactive)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, categories)
}

// GetCategory GET /api/v1/categories/:id
func (h *Handler) GetCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		utils.BadRequest(c, "无效的分类 ID")
		return
	}

	category, err := h.Categories.Get(id)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, category)
}

// CreateCategory POST /api/v1/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,min=1,max=50"`
		Description string `json:"description" binding:"omitempty,max=500"`
		Color       string `json:"color" binding:"omitempty,max=20"`
		SortOrder   int    `json:"sortOrder"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if err := h.Categories.Create(c.Request.Context(), category); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "分类已创建", category)
}

// UpdateCategory PUT /api/v1/categories/:id
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		utils.BadRequest(c, "无效的分类 ID")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"omitempty,min=1,max=50"`
		Description string `json:"description" binding:"omitempty,max=500"`
		Color       string `json:"color" binding:"omitempty,max=20"`
		SortOrder   int    `json:"sortOrder"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	category, err := h.Categories.Update(c.Request.Context(), id, &model.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "分类已更新", category)
}

// DeleteCategory DELETE /api/v1/categories/:id（有剧目引用时返回 409）
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		utils.BadRequest(c, "无效的分类 ID")
		return
	}

	if err := h.Categories.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "分类已删除", nil)
}

// ToggleCategory PATCH /api/v1/categories/:id/toggle
func (h *Handler) ToggleCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		utils.BadRequest(c, "无效的分类 ID")
		return
	}

	category, err := h.Categories.ToggleActive(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "分类状态已切换", category)
}

// SortCategories PUT /api/v1/categories/sort-order
func (h *Handler) SortCategories(c *gin.Context) {
	var req struct {
		IDs []int `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	if err := h.Categories.UpdateSortOrder(c.Request.Context(), req.IDs); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "排序已更新", nil)
}

// CategoryStats GET /api/v1/categories/stats
func (h *Handler) CategoryStats(c *gin.Context) {
	stats, err := h.Categories.Stats(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, stats)
}
