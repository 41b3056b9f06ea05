package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/model"
	"github.com/user/cinequeue/internal/repository"
)

// AddFavorite 从队列卡片收藏电影，以会话内的收藏集合判断是否重复
func (s *Session) AddFavorite(ctx context.Context, movie model.Movie) (model.Favorite, error) {
	return s.addFavorite(ctx, movie, false)
}

// AddCurrentToFavorites 收藏当前展示的电影
func (s *Session) AddCurrentToFavorites(ctx context.Context) (model.Favorite, error) {
	s.mu.Lock()
	movie, ok := s.queue.Current()
	s.mu.Unlock()
	if !ok {
		return model.Favorite{}, ErrNoCurrentMovie
	}
	return s.AddFavorite(ctx, movie)
}

// addFavorite 先检查是否已收藏再写入
// fromHistory 为 true 时额外按 (user, movieId) 查询存储
func (s *Session) addFavorite(ctx context.Context, movie model.Movie, fromHistory bool) (model.Favorite, error) {
	user, err := s.currentUser()
	if err != nil {
		return model.Favorite{}, err
	}
	done, err := s.beginWrite()
	if err != nil {
		return model.Favorite{}, err
	}
	defer done()

	v, err, _ := s.inflight.Do("favorite:"+movie.ID, func() (interface{}, error) {
		s.mu.Lock()
		dup := s.favorites.Has(movie.ID)
		s.mu.Unlock()
		if dup {
			return model.Favorite{}, ErrDuplicateFavorite
		}

		if fromHistory {
			exists, err := s.repos.Favorite.IsFavorited(ctx, user.ID, movie.ID)
			if err != nil {
				return model.Favorite{}, fmt.Errorf("%w: 检查收藏: %w", ErrDataFetch, err)
			}
			if exists {
				s.rememberFavorite(movie.ID, repository.FavoriteID(user.ID, movie.ID))
				return model.Favorite{}, ErrDuplicateFavorite
			}
		}

		fav, err := s.repos.Favorite.Add(ctx, model.NewFavorite(movie, user, s.now()))
		if errors.Is(err, repository.ErrAlreadyExists) {
			// 其他设备已经收藏，同步到本地集合
			s.rememberFavorite(movie.ID, repository.FavoriteID(user.ID, movie.ID))
			return model.Favorite{}, fmt.Errorf("%w: %w", ErrDuplicateFavorite, err)
		}
		if err != nil {
			s.log.Warn("保存收藏失败", zap.String("movie_id", movie.ID), zap.Error(err))
			return model.Favorite{}, fmt.Errorf("%w: 保存收藏: %w", ErrPersistence, err)
		}

		s.rememberFavorite(movie.ID, fav.ID)
		s.log.Info("已收藏", zap.String("movie_id", movie.ID), zap.String("favorite_id", fav.ID))
		return fav, nil
	})
	return v.(model.Favorite), err
}

func (s *Session) rememberFavorite(movieID, favoriteID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites.Add(movieID, favoriteID)
}

// RemoveFavorite 取消收藏，删除成功后才更新收藏集合
func (s *Session) RemoveFavorite(ctx context.Context, favoriteID string) error {
	user, err := s.currentUser()
	if err != nil {
		return err
	}

	s.mu.Lock()
	_, known := s.favorites.MovieID(favoriteID)
	s.mu.Unlock()
	if !known {
		// 可能是其他设备添加的收藏，确认归属后再删除
		owned, err := s.repos.Favorite.IDsByUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("%w: 读取收藏: %w", ErrDataFetch, err)
		}
		if !slices.Contains(owned, favoriteID) {
			return fmt.Errorf("%w: 收藏 %s", ErrNotFound, favoriteID)
		}
	}

	if err := s.repos.Favorite.Remove(ctx, favoriteID); err != nil {
		s.log.Warn("取消收藏失败", zap.String("favorite_id", favoriteID), zap.Error(err))
		return fmt.Errorf("%w: 取消收藏: %w", ErrPersistence, err)
	}

	s.mu.Lock()
	s.favorites.RemoveByFavoriteID(favoriteID)
	s.mu.Unlock()

	s.log.Info("已取消收藏", zap.String("favorite_id", favoriteID))
	return nil
}

// ToggleFavorite 切换当前电影的收藏状态，返回切换后是否已收藏
func (s *Session) ToggleFavorite(ctx context.Context) (bool, error) {
	s.mu.Lock()
	movie, ok := s.queue.Current()
	var favoriteID string
	var favorited bool
	if ok {
		favoriteID, favorited = s.favorites.FavoriteID(movie.ID)
	}
	s.mu.Unlock()
	if !ok {
		return false, ErrNoCurrentMovie
	}

	if favorited {
		if err := s.RemoveFavorite(ctx, favoriteID); err != nil {
			return true, err
		}
		return false, nil
	}
	if _, err := s.AddFavorite(ctx, movie); err != nil {
		return errors.Is(err, ErrDuplicateFavorite), err
	}
	return true, nil
}

// IsFavorite 电影是否已收藏
func (s *Session) IsFavorite(movieID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Has(movieID)
}

// ListFavorites 收藏列表，按收藏时间倒序，同时刷新会话内的收藏集合
func (s *Session) ListFavorites(ctx context.Context) ([]model.Favorite, error) {
	favorites, err := s.repos.Favorite.ListByUser(ctx, s.user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取收藏: %w", ErrDataFetch, err)
	}

	slices.SortStableFunc(favorites, func(a, b model.Favorite) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	s.mu.Lock()
	s.favorites = NewFavoriteSet(favorites)
	s.mu.Unlock()
	return favorites, nil
}
