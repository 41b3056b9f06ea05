package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/model"
)

const (
	MinRating = 1
	MaxRating = 5
)

// RateCurrent 为当前电影评分（"看过"）
func (s *Session) RateCurrent(ctx context.Context, rating int) (model.Review, error) {
	s.mu.Lock()
	movie, ok := s.queue.Current()
	s.mu.Unlock()
	if !ok {
		return model.Review{}, ErrNoCurrentMovie
	}
	return s.SubmitRating(ctx, movie, rating)
}

// SubmitRating 写入评分记录，成功后把电影加入已评分集合并移出队列
// 写入失败时队列和已评分集合都不变
func (s *Session) SubmitRating(ctx context.Context, movie model.Movie, rating int) (model.Review, error) {
	if rating < MinRating || rating > MaxRating {
		return model.Review{}, fmt.Errorf("%w: %d", ErrInvalidRating, rating)
	}
	user, err := s.currentUser()
	if err != nil {
		return model.Review{}, err
	}
	done, err := s.beginWrite()
	if err != nil {
		return model.Review{}, err
	}
	defer done()

	// 同一电影的并发提交共享同一次写入
	v, err, shared := s.inflight.Do("rate:"+movie.ID, func() (interface{}, error) {
		s.mu.Lock()
		queued := s.queue.Contains(movie.ID) && !s.reviewed.Has(movie.ID)
		s.mu.Unlock()
		if !queued {
			return model.Review{}, fmt.Errorf("%w: 电影 %s 不在待评分队列中", ErrNotFound, movie.ID)
		}

		review, err := s.repos.Review.Add(ctx, model.NewReview(movie, user, rating, s.now()))
		if err != nil {
			s.log.Warn("保存评分失败", zap.String("movie_id", movie.ID), zap.Error(err))
			return model.Review{}, fmt.Errorf("%w: 保存评分: %w", ErrPersistence, err)
		}

		s.mu.Lock()
		s.reviewed.Add(movie.ID)
		s.queue.Remove(movie.ID)
		s.mu.Unlock()

		s.log.Info("评分已保存",
			zap.String("movie_id", movie.ID),
			zap.String("review_id", review.ID),
			zap.Int("rating", rating),
		)
		return review, nil
	})
	review := v.(model.Review)
	if shared {
		s.log.Debug("合并重复的评分请求", zap.String("movie_id", movie.ID))
		// 同一电影只保留先写入的评分，评分不同的并发请求视为电影已不在队列中
		if err == nil && review.Rating != rating {
			return model.Review{}, fmt.Errorf("%w: 电影 %s 已被评分", ErrNotFound, movie.ID)
		}
	}
	return review, err
}
