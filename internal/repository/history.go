package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/model"
)

// ReviewRepository 评分历史
type ReviewRepository struct {
	store DocumentStore
	log   *zap.Logger
}

func NewReviewRepository(store DocumentStore, log *zap.Logger) *ReviewRepository {
	return &ReviewRepository{store: store, log: log.Named("ReviewRepository")}
}

// Add 写入评分记录
func (r *ReviewRepository) Add(ctx context.Context, review model.Review) (model.Review, error) {
	id, err := r.store.Add(ctx, CollectionReviews, review.Fields())
	if err != nil {
		return model.Review{}, err
	}
	review.ID = id
	return review, nil
}

// ListByUser 获取用户全部评分记录（未排序）
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]model.Review, error) {
	docs, err := r.store.GetWhere(ctx, CollectionReviews, Where("user.id", userID))
	if err != nil {
		return nil, err
	}

	reviews := make([]model.Review, 0, len(docs))
	for _, doc := range docs {
		review, err := model.ReviewFromDocument(doc.ID, doc.Fields)
		if err != nil {
			r.log.Warn("跳过格式错误的评分文档", zap.Error(err))
			continue
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

// MovieIDsByUser 获取用户评过分的全部电影 ID
// 只要求 movieId 为非空字符串，评分等字段格式错误的文档同样计入
func (r *ReviewRepository) MovieIDsByUser(ctx context.Context, userID string) ([]string, error) {
	docs, err := r.store.GetWhere(ctx, CollectionReviews, Where("user.id", userID))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		movieID, ok := doc.Fields["movieId"].(string)
		if !ok || movieID == "" {
			r.log.Warn("评分文档缺少 movieId", zap.String("review_id", doc.ID))
			continue
		}
		ids = append(ids, movieID)
	}
	return ids, nil
}

// IDsByUser 获取用户全部评分文档 ID，不做格式校验（用于账号注销时的清理）
func (r *ReviewRepository) IDsByUser(ctx context.Context, userID string) ([]string, error) {
	return documentIDs(ctx, r.store, CollectionReviews, userID)
}

// Delete 删除评分记录
func (r *ReviewRepository) Delete(ctx context.Context, reviewID string) error {
	return r.store.DeleteByID(ctx, CollectionReviews, reviewID)
}

func documentIDs(ctx context.Context, store DocumentStore, collection, userID string) ([]string, error) {
	docs, err := store.GetWhere(ctx, collection, Where("user.id", userID))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids, nil
}
