package service

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/user/shortdrama/internal/config"
)

type sessionCleaner interface {
	DeleteExpired() (int64, error)
}

type historyCleaner interface {
	DeleteOld(days int) (int64, error)
	DeleteStaleKeywords(days int) (int64, error)
}

// 超过 30 天没人再搜的词整体出清
const staleKeywordDays = 30

// CleanupService 定时清理过期会话与陈旧搜索历史
type CleanupService struct {
	sessions sessionCleaner
	history  historyCleaner
	cfg      *config.Config
	cron     *cron.Cron
}

// NewCleanupService 创建清理服务
func NewCleanupService(sessions sessionCleaner, history historyCleaner, cfg *config.Config) *CleanupService {
	return &CleanupService{
		sessions: sessions,
		history:  history,
		cfg:      cfg,
		cron:     cron.New(),
	}
}

// Start 注册定时任务并启动调度器
func (s *CleanupService) Start() error {
	// 每小时清过期会话
	if _, err := s.cron.AddFunc("@hourly", s.cleanSessions); err != nil {
		return err
	}
	// 每天凌晨清超保留期的搜索历史
	if _, err := s.cron.AddFunc("0 3 * * *", s.cleanSearchHistory); err != nil {
		return err
	}
	// 随后清长期无人搜索的热搜词
	if _, err := s.cron.AddFunc("30 3 * * *", s.cleanStaleKeywords); err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Msg("清理任务已启动")
	return nil
}

// Stop 停止调度器，等待在跑任务结束
func (s *CleanupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *CleanupService) cleanSessions() {
	deleted, err := s.sessions.DeleteExpired()
	if err != nil {
		log.Error().Err(err).Msg("清理过期会话失败")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("已清理过期会话")
	}
}

func (s *CleanupService) cleanSearchHistory() {
	deleted, err := s.history.DeleteOld(s.cfg.SearchHistoryRetentionDays)
	if err != nil {
		log.Error().Err(err).Msg("清理搜索历史失败")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Int("retention_days", s.cfg.SearchHistoryRetentionDays).Msg("已清理陈旧搜索历史")
	}
}

func (s *CleanupService) cleanStaleKeywords() {
	deleted, err := s.history.DeleteStaleKeywords(staleKeywordDays)
	if err != nil {
		log.Error().Err(err).Msg("清理失活搜索词失败")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("已清理失活搜索词")
	}
}
