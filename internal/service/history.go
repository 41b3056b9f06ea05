package service

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/model"
)

// ListReviews 评分历史，按评分时间倒序
func (s *Session) ListReviews(ctx context.Context) ([]model.Review, error) {
	reviews, err := s.repos.Review.ListByUser(ctx, s.user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取评分历史: %w", ErrDataFetch, err)
	}
	slices.SortStableFunc(reviews, func(a, b model.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return reviews, nil
}

// DeleteReview 删除评分记录
// 不修改已评分集合和收藏集合，被删除的电影要到重新加载后才会回到队列
// 归属按原始文档 ID 判断，格式错误的评分文档也能删除
func (s *Session) DeleteReview(ctx context.Context, reviewID string) error {
	if _, err := s.currentUser(); err != nil {
		return err
	}
	ids, err := s.repos.Review.IDsByUser(ctx, s.user.ID)
	if err != nil {
		return fmt.Errorf("%w: 读取评分历史: %w", ErrDataFetch, err)
	}
	if !slices.Contains(ids, reviewID) {
		return fmt.Errorf("%w: 评分 %s", ErrNotFound, reviewID)
	}

	if err := s.repos.Review.Delete(ctx, reviewID); err != nil {
		s.log.Warn("删除评分失败", zap.String("review_id", reviewID), zap.Error(err))
		return fmt.Errorf("%w: 删除评分: %w", ErrPersistence, err)
	}
	s.log.Info("评分已删除", zap.String("review_id", reviewID))
	return nil
}

// PromoteReviewToFavorite 从评分历史收藏电影，写入前按 (user, movieId) 查询存储判重
func (s *Session) PromoteReviewToFavorite(ctx context.Context, reviewID string) (model.Favorite, error) {
	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return model.Favorite{}, err
	}
	return s.addFavorite(ctx, review.Movie(), true)
}

func (s *Session) findReview(ctx context.Context, reviewID string) (model.Review, error) {
	reviews, err := s.repos.Review.ListByUser(ctx, s.user.ID)
	if err != nil {
		return model.Review{}, fmt.Errorf("%w: 读取评分历史: %w", ErrDataFetch, err)
	}
	for _, r := range reviews {
		if r.ID == reviewID {
			return r, nil
		}
	}
	return model.Review{}, fmt.Errorf("%w: 评分 %s", ErrNotFound, reviewID)
}
