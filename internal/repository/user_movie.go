package repository

import (
	"context"

	"github.com/user/cinequeue/internal/model"
)

// ListActiveByOwner 获取用户自己添加且仍处于 active 状态的电影
func (r *MovieRepository) ListActiveByOwner(ctx context.Context, userID string) ([]model.Movie, error) {
	docs, err := r.store.GetWhere(ctx, CollectionUserMovies,
		Where("addedBy.id", userID),
		Where("active", true),
	)
	if err != nil {
		return nil, err
	}
	return r.decode(docs, model.SourceUserSubmitted), nil
}

// CreateUserMovie 新增用户电影，返回带 ID 的记录
func (r *MovieRepository) CreateUserMovie(ctx context.Context, m model.Movie) (model.Movie, error) {
	id, err := r.store.Add(ctx, CollectionUserMovies, m.Fields())
	if err != nil {
		return model.Movie{}, err
	}
	m.ID = id
	m.Source = model.SourceUserSubmitted
	return m, nil
}

// SetActive 更新用户电影的 active 状态
func (r *MovieRepository) SetActive(ctx context.Context, movieID string, active bool) error {
	return r.store.UpdateByID(ctx, CollectionUserMovies, movieID, map[string]any{"active": active})
}
