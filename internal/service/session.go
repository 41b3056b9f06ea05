package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/user/cinequeue/internal/model"
	"github.com/user/cinequeue/internal/repository"
)

// SessionOption 会话可选配置
type SessionOption func(*Session)

// WithShuffle 替换候选列表的打乱方式
func WithShuffle(shuffle ShuffleFunc) SessionOption {
	return func(s *Session) { s.shuffle = shuffle }
}

// WithClock 替换时间来源
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// Session 单个登录用户的会话
// 队列、已评分集合和收藏集合在会话内只有一份，所有命令共享
type Session struct {
	user     model.UserRef
	identity Identity
	repos    *repository.Repositories
	shuffle  ShuffleFunc
	now      func() time.Time
	log      *zap.Logger

	mu        sync.Mutex
	loaded    bool
	queue     *Queue
	reviewed  MovieSet
	favorites *FavoriteSet
	cascade   CascadeState

	// writes 注销流程开始删除前等待进行中的写入结束
	writes sync.RWMutex

	// inflight 合并同一电影上重复提交的评分/收藏命令
	inflight singleflight.Group
}

// QueueView 队列当前状态
type QueueView struct {
	Current    *model.Movie `json:"current"`
	Remaining  int          `json:"remaining"`
	IsFavorite bool         `json:"isFavorite"`
}

// NewSession 为当前登录用户创建会话
func NewSession(identity Identity, repos *repository.Repositories, log *zap.Logger, opts ...SessionOption) (*Session, error) {
	user, ok := identity.CurrentUser()
	if !ok {
		return nil, ErrNotSignedIn
	}

	s := &Session{
		user:      user,
		identity:  identity,
		repos:     repos,
		shuffle:   RandomShuffle,
		now:       time.Now,
		log:       log.Named("Session").With(zap.String("user_id", user.ID)),
		queue:     NewQueue(nil),
		reviewed:  MovieSet{},
		favorites: NewFavoriteSet(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// User 会话所属用户
func (s *Session) User() model.UserRef {
	return s.user
}

// Loaded 是否已完成首次加载
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Load 加载（或重新加载）候选队列、已评分集合和收藏集合
// 任意读取失败时队列置空并返回 ErrDataFetch
func (s *Session) Load(ctx context.Context) (QueueView, error) {
	aggregator := NewAggregator(s.repos.Movie, s.shuffle, s.log)

	var (
		candidates []model.Movie
		reviewed   []string
		favorites  []model.Favorite
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = aggregator.Candidates(gctx, s.user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		reviewed, err = s.repos.Review.MovieIDsByUser(gctx, s.user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		favorites, err = s.repos.Favorite.ListByUser(gctx, s.user.ID)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.queue = NewQueue(nil)
		s.loaded = true
		s.log.Warn("加载队列失败", zap.Error(err))
		return s.viewLocked(), fmt.Errorf("%w: %w", ErrDataFetch, err)
	}

	s.reviewed = ReviewedSet(reviewed)
	s.favorites = NewFavoriteSet(favorites)
	s.queue = NewQueue(s.reviewed.Exclude(candidates))
	s.loaded = true

	s.log.Info("队列已加载",
		zap.Int("candidates", len(candidates)),
		zap.Int("reviewed", len(s.reviewed)),
		zap.Int("queue", s.queue.Len()),
	)
	return s.viewLocked(), nil
}

// Current 当前展示的电影
func (s *Session) Current() QueueView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Skip 跳过当前电影（"没看过"），稍后循环时会再次出现
func (s *Session) Skip() QueueView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Advance()
	return s.viewLocked()
}

// Queue 剩余候选电影
func (s *Session) Queue() []model.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Items()
}

// IsReviewed 电影是否已在本会话的已评分集合中
func (s *Session) IsReviewed(movieID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewed.Has(movieID)
}

// Close 退出登录并清空会话状态
func (s *Session) Close() {
	s.identity.SignOut()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.queue = NewQueue(nil)
	s.reviewed = MovieSet{}
	s.favorites = NewFavoriteSet(nil)
	s.loaded = false
}

func (s *Session) viewLocked() QueueView {
	view := QueueView{Remaining: s.queue.Len()}
	if m, ok := s.queue.Current(); ok {
		view.Current = &m
		view.IsFavorite = s.favorites.Has(m.ID)
	}
	return view
}

// currentUser 写入前确认仍处于登录状态
func (s *Session) currentUser() (model.UserRef, error) {
	user, ok := s.identity.CurrentUser()
	if !ok || user.ID != s.user.ID {
		return model.UserRef{}, ErrNotSignedIn
	}
	return user, nil
}
