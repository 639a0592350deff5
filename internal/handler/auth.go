package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/shortdrama/internal/middleware"
	"github.com/user/shortdrama/internal/service"
	"github.com/user/shortdrama/internal/utils"
)

const refreshCookieName = "refresh_token"

// Register POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=30,alphanum"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8,max=72"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.Auth.Register(req.Username, req.Email, req.Password)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "注册成功", user)
}

// Login POST /api/v1/auth/login
// refresh token 放 HttpOnly cookie，access token 放响应体
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	tokens, user, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password,
		c.GetHeader("User-Agent"), utils.HashIP(c.ClientIP()))
	if err != nil {
		serviceError(c, err)
		return
	}

	h.setRefreshCookie(c, tokens)
	utils.SuccessWithMessage(c, "登录成功", gin.H{
		"accessToken":     tokens.AccessToken,
		"accessExpiresAt": tokens.AccessExpiresAt,
		"user":            user,
	})
}

// RefreshToken POST /api/v1/auth/refresh-token
func (h *Handler) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		// 兼容非浏览器客户端从请求体传
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil || req.RefreshToken == "" {
			utils.Unauthorized(c, "缺少刷新令牌")
			return
		}
		refreshToken = req.RefreshToken
	}

	tokens, user, err := h.Auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		serviceError(c, err)
		return
	}

	h.setRefreshCookie(c, tokens)
	utils.Success(c, gin.H{
		"accessToken":     tokens.AccessToken,
		"accessExpiresAt": tokens.AccessExpiresAt,
		"user":            user,
	})
}

// Logout POST /api/v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		utils.Unauthorized(c, "")
		return
	}

	if err := h.Auth.Logout(c.Request.Context(), claims); err != nil {
		serviceError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	utils.SuccessWithMessage(c, "已登出", nil)
}

// LogoutAll POST /api/v1/auth/logout-all
func (h *Handler) LogoutAll(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		utils.Unauthorized(c, "")
		return
	}

	deleted, err := h.Auth.LogoutAll(c.Request.Context(), claims)
	if err != nil {
		serviceError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	utils.SuccessWithMessage(c, "全部设备已登出", gin.H{"sessions": deleted})
}

// Profile GET /api/v1/auth/profile
func (h *Handler) Profile(c *gin.Context) {
	user, err := h.Users.Get(middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, user)
}

// CheckUsername GET /api/v1/auth/check-username/:username（也接受 ?username=）
func (h *Handler) CheckUsername(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		username = c.Query("username")
	}
	if username == "" {
		utils.BadRequest(c, "缺少 username 参数")
		return
	}

	available, err := h.Users.IsUsernameAvailable(username)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, gin.H{"available": available})
}

// CheckEmail GET /api/v1/auth/check-email/:email（也接受 ?email=）
func (h *Handler) CheckEmail(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		email = c.Query("email")
	}
	if email == "" {
		utils.BadRequest(c, "缺少 email 参数")
		return
	}

	available, err := h.Users.IsEmailAvailable(email)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, gin.H{"available": available})
}

func (h *Handler) setRefreshCookie(c *gin.Context, tokens *service.AuthTokens) {
	secure := h.Config.Env == "production"
	c.SetCookie(refreshCookieName, tokens.RefreshToken,
		int(h.Config.RefreshExpiry.Seconds()), "/api/v1/auth", "", secure, true)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(refreshCookieName, "", -1, "/api/v1/auth", "", false, true)
}
