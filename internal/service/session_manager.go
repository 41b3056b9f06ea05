package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/repository"
	"github.com/user/cinequeue/internal/utils"
)

// SessionManager 按用户 ID 管理在线会话，空闲超时或超出容量的会话会被淘汰
type SessionManager struct {
	repos    *repository.Repositories
	sessions *utils.TTLCache[*Session]
	opts     []SessionOption
	log      *zap.Logger

	// mu 保证同一时间只为一个用户创建一个会话
	mu sync.Mutex
}

func NewSessionManager(repos *repository.Repositories, size int, idle time.Duration, log *zap.Logger, opts ...SessionOption) (*SessionManager, error) {
	sessions, err := utils.NewTTLCache[*Session](size, idle)
	if err != nil {
		return nil, err
	}
	return &SessionManager{
		repos:    repos,
		sessions: sessions,
		opts:     opts,
		log:      log.Named("SessionManager"),
	}, nil
}

// Get 获取用户的在线会话
func (m *SessionManager) Get(userID string) (*Session, bool) {
	return m.sessions.Get(userID)
}

// Acquire 获取用户会话，不存在时用 newIdentity 创建并加载队列
// 加载失败的会话不会被缓存，下次请求会重新创建
func (m *SessionManager) Acquire(ctx context.Context, userID string, newIdentity func() Identity) (*Session, error) {
	if s, ok := m.sessions.Get(userID); ok {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions.Get(userID); ok {
		return s, nil
	}

	s, err := NewSession(newIdentity(), m.repos, m.log, m.opts...)
	if err != nil {
		return nil, err
	}
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}

	m.sessions.Set(userID, s)
	m.log.Debug("会话已创建", zap.String("user_id", userID))
	return s, nil
}

// SignOut 某个设备退出登录
// 只有会话由该 Token 建立时才关闭会话，否则会话继续服务同一用户的其他设备
func (m *SessionManager) SignOut(userID, token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions.Get(userID)
	if !ok || s.identity.Token() != token {
		return false
	}
	m.sessions.Delete(userID)
	s.Close()
	m.log.Debug("会话已关闭", zap.String("user_id", userID))
	return true
}

// Remove 只移除会话，不再调用退出登录（用于账号已注销的会话）
func (m *SessionManager) Remove(userID string) {
	m.sessions.Delete(userID)
}

// PurgeExpired 清理空闲超时的会话
// 过期会话不调用退出登录，Token 仍可用于重新建立会话
func (m *SessionManager) PurgeExpired() int {
	return m.sessions.PurgeExpired()
}

// Len 在线会话数
func (m *SessionManager) Len() int {
	return m.sessions.Len()
}
