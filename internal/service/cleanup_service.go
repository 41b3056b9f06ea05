package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CleanupService 定时清理空闲超时的会话
type CleanupService struct {
	sessions *SessionManager
	interval time.Duration
	log      *zap.Logger
}

// NewCleanupService 创建清理服务
func NewCleanupService(sessions *SessionManager, interval time.Duration, log *zap.Logger) *CleanupService {
	return &CleanupService{
		sessions: sessions,
		interval: interval,
		log:      log.Named("CleanupService"),
	}
}

// Start 启动定时清理任务，ctx 结束时退出
func (s *CleanupService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runCleanup()
			}
		}
	}()
}

func (s *CleanupService) runCleanup() int {
	purged := s.sessions.PurgeExpired()
	if purged > 0 {
		s.log.Info("已清理过期会话", zap.Int("purged", purged), zap.Int("remaining", s.sessions.Len()))
	}
	return purged
}
