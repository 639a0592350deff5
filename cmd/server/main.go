package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/user/shortdrama/internal/cache"
	"github.com/user/shortdrama/internal/config"
	"github.com/user/shortdrama/internal/handler"
	"github.com/user/shortdrama/internal/middleware"
	"github.com/user/shortdrama/internal/repository"
	"github.com/user/shortdrama/internal/router"
	"github.com/user/shortdrama/internal/service"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	// 初始化数据库
	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("数据库连接失败")
	}

	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	// 初始化仓库
	repos := repository.NewRepositories(db)

	// 初始化缓存：Redis 不可用时退化为进程内存储
	var store cache.Store
	if redisStore, err := cache.NewRedisStore(cfg.RedisURL); err != nil {
		log.Warn().Err(err).Msg("Redis 连接失败，使用进程内缓存")
		store = cache.NewMemoryStore()
	} else {
		store = redisStore
	}
	c := cache.New(store)
	defer c.Close()

	// 初始化服务
	authSvc := service.NewAuthService(repos.User, repos.Session, c, cfg)
	userSvc := service.NewUserService(repos.User, repos.Session)
	dramaSvc := service.NewDramaService(repos.Drama, c)
	categorySvc := service.NewCategoryService(repos.Category, repos.Drama, c)
	searchSvc := service.NewSearchService(repos.Drama, repos.User, repos.Category, repos.SearchHistory, c)
	recommendSvc := service.NewRecommendService(repos.Drama, repos.Preference, repos.WatchHistory, c)
	rankingSvc := service.NewRankingService(repos.Drama, c)
	prefSvc := service.NewPreferenceService(repos.Preference, repos.Drama, repos.WatchHistory, c)
	importerSvc := service.NewImporterService(repos.Drama)

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 前端 SPA 构建产物（存在才挂载）
	if _, err := os.Stat("./web/dist"); err == nil {
		r.Static("/app", "./web/dist")
	}

	// 初始化 Handler 并注册路由
	h := handler.NewHandler(cfg, authSvc, userSvc, dramaSvc, categorySvc,
		searchSvc, recommendSvc, rankingSvc, prefSvc, importerSvc)
	router.RegisterRoutes(r, h)

	// 启动定时清理任务
	cleanupSvc := service.NewCleanupService(repos.Session, repos.SearchHistory, cfg)
	if err := cleanupSvc.Start(); err != nil {
		log.Fatal().Err(err).Msg("清理任务启动失败")
	}
	defer cleanupSvc.Stop()

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，主协程监听退出信号
	go func() {
		log.Info().Str("port", cfg.Port).Msg("服务器已启动")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("服务器启动失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("服务器强制关闭")
	}

	log.Info().Msg("服务器已退出")
}
