package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/model"
)

// favoriteNamespace 收藏 ID 的命名空间，同一 (user, movie) 总是得到同一个 ID
var favoriteNamespace = uuid.MustParse("6f1c7a52-3f0e-4c55-9d8e-2b7d1f3c9a10")

// FavoriteID 计算收藏文档 ID
func FavoriteID(userID, movieID string) string {
	return uuid.NewSHA1(favoriteNamespace, []byte(userID+"/"+movieID)).String()
}

type FavoriteRepository struct {
	store DocumentStore
	log   *zap.Logger
}

func NewFavoriteRepository(store DocumentStore, log *zap.Logger) *FavoriteRepository {
	return &FavoriteRepository{store: store, log: log.Named("FavoriteRepository")}
}

// Add 添加收藏，同一 (user, movie) 已存在时返回 ErrAlreadyExists
func (r *FavoriteRepository) Add(ctx context.Context, fav model.Favorite) (model.Favorite, error) {
	fav.ID = FavoriteID(fav.User.ID, fav.MovieID)
	if err := r.store.Create(ctx, CollectionFavorites, fav.ID, fav.Fields()); err != nil {
		return model.Favorite{}, err
	}
	return fav, nil
}

// Remove 取消收藏
func (r *FavoriteRepository) Remove(ctx context.Context, favoriteID string) error {
	return r.store.DeleteByID(ctx, CollectionFavorites, favoriteID)
}

// IsFavorited 检查是否已收藏
func (r *FavoriteRepository) IsFavorited(ctx context.Context, userID, movieID string) (bool, error) {
	docs, err := r.store.GetWhere(ctx, CollectionFavorites,
		Where("user.id", userID),
		Where("movieId", movieID),
	)
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// ListByUser 获取用户收藏列表（未排序）
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]model.Favorite, error) {
	docs, err := r.store.GetWhere(ctx, CollectionFavorites, Where("user.id", userID))
	if err != nil {
		return nil, err
	}

	favorites := make([]model.Favorite, 0, len(docs))
	for _, doc := range docs {
		fav, err := model.FavoriteFromDocument(doc.ID, doc.Fields)
		if err != nil {
			r.log.Warn("跳过格式错误的收藏文档", zap.Error(err))
			continue
		}
		favorites = append(favorites, fav)
	}
	return favorites, nil
}

// IDsByUser 获取用户全部收藏文档 ID（用于账号注销时的清理）
func (r *FavoriteRepository) IDsByUser(ctx context.Context, userID string) ([]string, error) {
	return documentIDs(ctx, r.store, CollectionFavorites, userID)
}
