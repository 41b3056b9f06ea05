package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/model"
)

// AddMovie 添加自己的电影，成功后追加到当前队列末尾
func (s *Session) AddMovie(ctx context.Context, title, posterURL string) (model.Movie, error) {
	user, err := s.currentUser()
	if err != nil {
		return model.Movie{}, err
	}
	done, err := s.beginWrite()
	if err != nil {
		return model.Movie{}, err
	}
	defer done()

	title = strings.TrimSpace(title)
	if title == "" {
		title = model.UntitledMovie
	}
	active := true
	movie, err := s.repos.Movie.CreateUserMovie(ctx, model.Movie{
		Title:     title,
		PosterURL: strings.TrimSpace(posterURL),
		Source:    model.SourceUserSubmitted,
		AddedBy:   &user,
		Active:    &active,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.log.Warn("添加电影失败", zap.String("title", title), zap.Error(err))
		return model.Movie{}, fmt.Errorf("%w: 添加电影: %w", ErrPersistence, err)
	}

	s.mu.Lock()
	s.queue.Append(movie)
	s.mu.Unlock()

	s.log.Info("电影已添加", zap.String("movie_id", movie.ID))
	return movie, nil
}

// DeactivateMovie 下架自己添加的电影，并从当前队列移除
func (s *Session) DeactivateMovie(ctx context.Context, movieID string) error {
	user, err := s.currentUser()
	if err != nil {
		return err
	}

	owned, err := s.repos.Movie.ListActiveByOwner(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("%w: 读取电影: %w", ErrDataFetch, err)
	}
	found := false
	for _, m := range owned {
		if m.ID == movieID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: 电影 %s", ErrNotFound, movieID)
	}

	if err := s.repos.Movie.SetActive(ctx, movieID, false); err != nil {
		s.log.Warn("下架电影失败", zap.String("movie_id", movieID), zap.Error(err))
		return fmt.Errorf("%w: 下架电影: %w", ErrPersistence, err)
	}

	s.mu.Lock()
	s.queue.Remove(movieID)
	s.mu.Unlock()

	s.log.Info("电影已下架", zap.String("movie_id", movieID))
	return nil
}
