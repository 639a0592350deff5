package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/shortdrama/internal/service"
	"github.com/user/shortdrama/internal/utils"
)

// RequireAuth 必须登录中间件
func RequireAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractClaims(c, auth)
		if err != nil {
			utils.Unauthorized(c, "未登录或令牌已失效")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth 可选登录中间件（不强制要求登录）
func OptionalAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := extractClaims(c, auth); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// RequireAdmin 管理员权限中间件
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != "admin" {
			utils.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractClaims 从 Authorization Header 提取并校验访问令牌
func extractClaims(c *gin.Context, auth *service.AuthService) (*service.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, service.ErrTokenInvalid
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	return auth.VerifyAccess(c.Request.Context(), tokenString)
}

// setClaims 将用户信息存入上下文
func setClaims(c *gin.Context, claims *service.Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("role", claims.Role)
	c.Set("claims", claims)
}

// GetUserID 从上下文获取用户 ID（未登录返回 0）
func GetUserID(c *gin.Context) int {
	if userID, exists := c.Get("user_id"); exists {
		return userID.(int)
	}
	return 0
}

// GetUserIDPtr 从上下文获取用户 ID 指针（未登录返回 nil）
func GetUserIDPtr(c *gin.Context) *int {
	if userID, exists := c.Get("user_id"); exists {
		id := userID.(int)
		return &id
	}
	return nil
}

// GetClaims 从上下文获取完整声明（未登录返回 nil）
func GetClaims(c *gin.Context) *service.Claims {
	if claims, exists := c.Get("claims"); exists {
		return claims.(*service.Claims)
	}
	return nil
}
