package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/shortdrama/internal/handler"
	"github.com/user/shortdrama/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// ==================== 剧目 ====================
	dramas := v1.Group("/dramas")
	dramas.Use(middleware.OptionalAuth(h.Auth))
	{
		dramas.GET("", h.ListDramas)
		dramas.GET("/search", h.SearchDramas)
		dramas.GET("/hot", h.HotDramas)
		dramas.GET("/new", h.NewDramas)
		dramas.GET("/trending", h.TrendingDramas)
		dramas.GET("/recommendations", h.GeneralRecommendations)
		dramas.GET("/:id", h.GetDrama)
		dramas.POST("/:id/view", h.RecordView)
		dramas.GET("/:id/recommendations", h.DramaRecommendations)
		dramas.POST("/:id/actions", middleware.RequireAuth(h.Auth), h.RecordAction)
	}

	// ==================== 分类 ====================
	categories := v1.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/stats", h.CategoryStats)
		categories.GET("/:id", h.GetCategory)

		// 写操作仅限管理员
		adminOnly := categories.Group("")
		adminOnly.Use(middleware.RequireAuth(h.Auth), middleware.RequireAdmin())
		{
			adminOnly.POST("", h.CreateCategory)
			adminOnly.PUT("/sort-order", h.SortCategories)
			adminOnly.PUT("/:id", h.UpdateCategory)
			adminOnly.DELETE("/:id", h.DeleteCategory)
			adminOnly.PATCH("/:id/toggle", h.ToggleCategory)
		}
	}

	// ==================== 认证 ====================
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh-token", h.RefreshToken)
		auth.GET("/check-username", h.CheckUsername)
		auth.GET("/check-username/:username", h.CheckUsername)
		auth.GET("/check-email", h.CheckEmail)
		auth.GET("/check-email/:email", h.CheckEmail)

		authed := auth.Group("")
		authed.Use(middleware.RequireAuth(h.Auth))
		{
			authed.POST("/logout", h.Logout)
			authed.POST("/logout-all", h.LogoutAll)
			authed.GET("/profile", h.Profile)
		}
	}

	// ==================== 用户 ====================
	users := v1.Group("/users")
	users.Use(middleware.RequireAuth(h.Auth))
	{
		users.PUT("/profile", h.UpdateProfile)
		users.PUT("/notifications", h.UpdateNotifications)
		users.PUT("/password", h.ChangePassword)

		adminOnly := users.Group("")
		adminOnly.Use(middleware.RequireAdmin())
		{
			adminOnly.GET("", h.ListUsers)
			adminOnly.GET("/search", h.SearchUsers)
			adminOnly.GET("/stats", h.UserStats)
			adminOnly.PATCH("/:id/status", h.UpdateUserStatus)
			adminOnly.PATCH("/:id/role", h.UpdateUserRole)
		}
	}

	// ==================== 搜索与发现 ====================
	search := v1.Group("/search")
	search.Use(middleware.OptionalAuth(h.Auth))
	{
		search.GET("", h.DoSearch)
		search.GET("/suggestions", h.SearchSuggestions)
		search.GET("/popular", h.PopularSearches)
		search.GET("/recommendations/:type", h.Recommendations)
		search.GET("/rankings/:type", h.Rankings)
		search.GET("/rankings/:type/trends", h.RankingTrends)

		authed := search.Group("")
		authed.Use(middleware.RequireAuth(h.Auth))
		{
			authed.GET("/preferences", h.GetPreferences)
			authed.PUT("/preferences", h.UpdatePreferences)
			authed.GET("/history", h.SearchHistory)
			authed.DELETE("/history", h.ClearSearchHistory)
		}
	}

	// ==================== 管理后台 ====================
	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAuth(h.Auth), middleware.RequireAdmin())
	{
		admin.POST("/import", h.AdminImport)
		admin.POST("/cache/clean", h.AdminCacheClean)
	}
}
