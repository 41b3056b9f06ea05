package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/model"
)

type MovieRepository struct {
	store DocumentStore
	log   *zap.Logger
}

func NewMovieRepository(store DocumentStore, log *zap.Logger) *MovieRepository {
	return &MovieRepository{store: store, log: log.Named("MovieRepository")}
}

// ListCurated 获取全部精选电影（不按用户过滤）
func (r *MovieRepository) ListCurated(ctx context.Context) ([]model.Movie, error) {
	docs, err := r.store.GetAll(ctx, CollectionMovies)
	if err != nil {
		return nil, err
	}
	return r.decode(docs, model.SourceCurated), nil
}

// decode 解析电影文档，格式错误的文档跳过并记录日志
func (r *MovieRepository) decode(docs []Document, source model.MovieSource) []model.Movie {
	movies := make([]model.Movie, 0, len(docs))
	for _, doc := range docs {
		m, err := model.MovieFromDocument(doc.ID, doc.Fields, source)
		if err != nil {
			r.log.Warn("跳过格式错误的电影文档", zap.String("source", string(source)), zap.Error(err))
			continue
		}
		movies = append(movies, m)
	}
	return movies
}
