package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/shortdrama/internal/utils"
)

// AdminImport POST /api/v1/admin/import
// 抓取并解析指定来源页，批量入库后刷新相关缓存
func (h *Handler) AdminImport(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.Importer.ImportFromURL(req.URL)
	if err != nil {
		serviceError(c, err)
		return
	}

	h.Dramas.Invalidate(c.Request.Context(), 0)
	utils.SuccessWithMessage(c, "导入完成", result)
}

// AdminCacheClean POST /api/v1/admin/cache/clean
func (h *Handler) AdminCacheClean(c *gin.Context) {
	h.Dramas.Invalidate(c.Request.Context(), 0)
	utils.SuccessWithMessage(c, "缓存已清理", nil)
}
