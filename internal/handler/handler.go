package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/user/shortdrama/internal/config"
	"github.com/user/shortdrama/internal/service"
	"github.com/user/shortdrama/internal/utils"
)

// Handler 聚合所有处理器的依赖
type Handler struct {
	Config *config.Config

	Auth       *service.AuthService
	Users      *service.UserService
	Dramas     *service.DramaService
	Categories *service.CategoryService
	Search     *service.SearchService
	Recommend  *service.RecommendService
	Ranking    *service.RankingService
	Prefs      *service.PreferenceService
	Importer   *service.ImporterService
}

// NewHandler 创建处理器聚合
func NewHandler(
	cfg *config.Config,
	auth *service.AuthService,
	users *service.UserService,
	dramas *service.DramaService,
	categories *service.CategoryService,
	search *service.SearchService,
	recommend *service.RecommendService,
	ranking *service.RankingService,
	prefs *service.PreferenceService,
	importer *service.ImporterService,
) *Handler {
	return &Handler{
		Config:     cfg,
		Auth:       auth,
		Users:      users,
		Dramas:     dramas,
		Categories: categories,
		Search:     search,
		Recommend:  recommend,
		Ranking:    ranking,
		Prefs:      prefs,
		Importer:   importer,
	}
}

// serviceError 服务层哨兵错误 → HTTP 状态码
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrCategoryInUse),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken):
		utils.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrTokenInvalid):
		utils.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrAccountBanned):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrAccountLocked):
		utils.Locked(c, err.Error())
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("请求处理失败")
		utils.InternalServerError(c, "")
	}
}
