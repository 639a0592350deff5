package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/shortdrama/internal/middleware"
	"github.com/user/shortdrama/internal/model"
	"github.com/user/shortdrama/internal/utils"
)

// UpdateProfile PUT /api/v1/users/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req struct {
		Nickname string `json:"nickname" binding:"omitempty,max=50"`
		Avatar   string `json:"avatar" binding:"omitempty,url"`
		Bio      string `json:"bio" binding:"omitempty,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.Users.UpdateProfile(middleware.GetUserID(c), model.Profile{
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Bio:      req.Bio,
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "资料已更新", user)
}

// UpdateNotifications PUT /api/v1/users/notifications
func (h *Handler) UpdateNotifications(c *gin.Context) {
	var req model.NotificationPrefs
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.Users.UpdateNotifications(middleware.GetUserID(c), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "通知偏好已更新", user)
}

// ChangePassword PUT /api/v1/users/password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	if err := h.Users.ChangePassword(middleware.GetUserID(c), req.OldPassword, req.NewPassword); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "密码已修改", nil)
}

// ListUsers GET /api/v1/users（管理端）
func (h *Handler) ListUsers(c *gin.Context) {
	users, total, err := h.Users.List(queryInt(c, "page", 1), queryInt(c, "limit", 20),
		c.Query("search"), c.Query("status"))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, gin.H{"items": users, "total": total})
}

// SearchUsers GET /api/v1/users/search（管理端，q 为关键词）
func (h *Handler) SearchUsers(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		keyword = c.Query("search")
	}

	users, total, err := h.Users.List(queryInt(c, "page", 1), queryInt(c, "limit", 20),
		keyword, c.Query("status"))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, gin.H{"items": users, "total": total})
}

// UpdateUserStatus PATCH /api/v1/users/:id/status（管理端）
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		utils.BadRequest(c, "无效的用户 ID")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=active inactive banned pending"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.Users.UpdateStatus(id, req.Status)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "用户状态已更新", user)
}

// UpdateUserRole PATCH /api/v1/users/:id/role（管理端）
func (h *Handler) UpdateUserRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		utils.BadRequest(c, "无效的用户 ID")
		return
	}

	var req struct {
		Role string `json:"role" binding:"required,oneof=user admin moderator"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.Users.UpdateRole(id, req.Role)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "用户角色已更新", user)
}

// UserStats GET /api/v1/users/stats（管理端）
func (h *Handler) UserStats(c *gin.Context) {
	count, err := h.Users.Count()
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, gin.H{"total": count})
}
