package service

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/cinequeue/internal/model"
	"github.com/user/cinequeue/internal/repository"
)

// ShuffleFunc 原地打乱候选列表
type ShuffleFunc func([]model.Movie)

// RandomShuffle 均匀随机打乱
func RandomShuffle(movies []model.Movie) {
	rand.Shuffle(len(movies), func(i, j int) {
		movies[i], movies[j] = movies[j], movies[i]
	})
}

// Aggregator 合并精选电影和用户自己添加的电影
type Aggregator struct {
	movies  *repository.MovieRepository
	shuffle ShuffleFunc
	log     *zap.Logger
}

func NewAggregator(movies *repository.MovieRepository, shuffle ShuffleFunc, log *zap.Logger) *Aggregator {
	if shuffle == nil {
		shuffle = RandomShuffle
	}
	return &Aggregator{movies: movies, shuffle: shuffle, log: log.Named("Aggregator")}
}

// Candidates 读取两个来源并按 ID 去重后打乱
// 任意一个来源读取失败都视为整体失败，不返回部分结果
func (a *Aggregator) Candidates(ctx context.Context, userID string) ([]model.Movie, error) {
	var curated, owned []model.Movie

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		curated, err = a.movies.ListCurated(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		owned, err = a.movies.ListActiveByOwner(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		a.log.Warn("读取候选电影失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	seen := make(map[string]struct{}, len(curated)+len(owned))
	pool := make([]model.Movie, 0, len(curated)+len(owned))
	for _, list := range [][]model.Movie{curated, owned} {
		for _, m := range list {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			pool = append(pool, m)
		}
	}

	a.shuffle(pool)
	a.log.Debug("候选电影已加载",
		zap.String("user_id", userID),
		zap.Int("curated", len(curated)),
		zap.Int("owned", len(owned)),
		zap.Int("pool", len(pool)),
	)
	return pool, nil
}
