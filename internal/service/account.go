package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CascadeState 注销账号流程状态
type CascadeState int

const (
	CascadeIdle CascadeState = iota
	CascadeReauthenticating
	CascadeDeleting
	CascadeDone
	CascadeFailed
)

func (s CascadeState) String() string {
	switch s {
	case CascadeIdle:
		return "idle"
	case CascadeReauthenticating:
		return "reauthenticating"
	case CascadeDeleting:
		return "deleting"
	case CascadeDone:
		return "done"
	case CascadeFailed:
		return "failed"
	default:
		return fmt.Sprintf("CascadeState(%d)", int(s))
	}
}

// deleteConcurrency 并行删除文档的上限
const deleteConcurrency = 8

// CascadeState 当前注销流程状态
func (s *Session) CascadeState() CascadeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cascade
}

func (s *Session) setCascade(state CascadeState) {
	s.mu.Lock()
	s.cascade = state
	s.mu.Unlock()
}

// beginWrite 注销流程进行中拒绝新的写入，返回的函数在写入结束后调用
func (s *Session) beginWrite() (func(), error) {
	s.writes.RLock()
	s.mu.Lock()
	state := s.cascade
	s.mu.Unlock()

	switch state {
	case CascadeReauthenticating, CascadeDeleting:
		s.writes.RUnlock()
		return nil, fmt.Errorf("%w: 注销流程正在进行", ErrCascade)
	case CascadeDone:
		s.writes.RUnlock()
		return nil, ErrNotSignedIn
	}
	return s.writes.RUnlock, nil
}

// DeleteAccount 注销账号：重新验证密码，删除全部评分和收藏，最后删除身份记录
// 任一删除失败都不会删除身份记录；已删除的文档不回滚，重试时重复删除视为成功
func (s *Session) DeleteAccount(ctx context.Context, password string) error {
	s.mu.Lock()
	switch s.cascade {
	case CascadeReauthenticating, CascadeDeleting:
		s.mu.Unlock()
		return fmt.Errorf("%w: 注销流程正在进行", ErrCascade)
	case CascadeDone:
		s.mu.Unlock()
		return ErrNotSignedIn
	}
	s.cascade = CascadeReauthenticating
	s.mu.Unlock()

	if err := s.identity.Reauthenticate(ctx, password); err != nil {
		s.setCascade(CascadeIdle)
		s.log.Warn("注销账号身份验证失败", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}

	// 等待已经开始的写入落库，之后的写入会被拒绝
	s.writes.Lock()
	s.setCascade(CascadeDeleting)
	s.writes.Unlock()

	if err := s.deleteUserDocuments(ctx); err != nil {
		s.setCascade(CascadeFailed)
		s.log.Warn("删除用户数据失败", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrCascade, err)
	}

	if err := s.identity.DeleteCurrentUser(ctx); err != nil {
		s.setCascade(CascadeFailed)
		s.log.Warn("删除身份记录失败", zap.Error(err))
		return fmt.Errorf("%w: 删除身份记录: %w", ErrCascade, err)
	}

	s.mu.Lock()
	s.cascade = CascadeDone
	s.resetLocked()
	s.mu.Unlock()

	s.log.Info("账号已注销")
	return nil
}

// deleteUserDocuments 并行删除用户的全部评分和收藏，等待所有删除结束
func (s *Session) deleteUserDocuments(ctx context.Context) error {
	var reviewIDs, favoriteIDs []string

	reads, rctx := errgroup.WithContext(ctx)
	reads.Go(func() error {
		var err error
		reviewIDs, err = s.repos.Review.IDsByUser(rctx, s.user.ID)
		return err
	})
	reads.Go(func() error {
		var err error
		favoriteIDs, err = s.repos.Favorite.IDsByUser(rctx, s.user.ID)
		return err
	})
	if err := reads.Wait(); err != nil {
		return fmt.Errorf("读取待删除数据: %w", err)
	}

	// 不使用 WithContext：一个删除失败不取消其他删除
	var deletes errgroup.Group
	deletes.SetLimit(deleteConcurrency)
	for _, id := range reviewIDs {
		deletes.Go(func() error {
			return s.repos.Review.Delete(ctx, id)
		})
	}
	for _, id := range favoriteIDs {
		deletes.Go(func() error {
			return s.repos.Favorite.Remove(ctx, id)
		})
	}
	if err := deletes.Wait(); err != nil {
		return err
	}

	s.log.Info("用户数据已删除",
		zap.Int("reviews", len(reviewIDs)),
		zap.Int("favorites", len(favoriteIDs)),
	)
	return nil
}
