package service

import "github.com/user/cinequeue/internal/model"

// MovieSet 电影 ID 集合
type MovieSet map[string]struct{}

// ReviewedSet 根据评分记录中的电影 ID 构建已评分集合
func ReviewedSet(movieIDs []string) MovieSet {
	set := make(MovieSet, len(movieIDs))
	for _, id := range movieIDs {
		set[id] = struct{}{}
	}
	return set
}

func (s MovieSet) Has(movieID string) bool {
	_, ok := s[movieID]
	return ok
}

func (s MovieSet) Add(movieID string) {
	s[movieID] = struct{}{}
}

// Exclude 过滤掉集合中的电影，保持原有顺序
func (s MovieSet) Exclude(movies []model.Movie) []model.Movie {
	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if !s.Has(m.ID) {
			out = append(out, m)
		}
	}
	return out
}

// FavoriteSet 已收藏电影，movieID -> 收藏文档 ID
type FavoriteSet struct {
	byMovie map[string]string
}

func NewFavoriteSet(favorites []model.Favorite) *FavoriteSet {
	s := &FavoriteSet{byMovie: make(map[string]string, len(favorites))}
	for _, f := range favorites {
		s.byMovie[f.MovieID] = f.ID
	}
	return s
}

func (s *FavoriteSet) Has(movieID string) bool {
	_, ok := s.byMovie[movieID]
	return ok
}

// FavoriteID 返回电影对应的收藏文档 ID
func (s *FavoriteSet) FavoriteID(movieID string) (string, bool) {
	id, ok := s.byMovie[movieID]
	return id, ok
}

func (s *FavoriteSet) Add(movieID, favoriteID string) {
	s.byMovie[movieID] = favoriteID
}

// MovieID 返回收藏文档 ID 对应的电影 ID
func (s *FavoriteSet) MovieID(favoriteID string) (string, bool) {
	for movieID, id := range s.byMovie {
		if id == favoriteID {
			return movieID, true
		}
	}
	return "", false
}

// RemoveByFavoriteID 按收藏文档 ID 移除，返回对应的电影 ID
func (s *FavoriteSet) RemoveByFavoriteID(favoriteID string) (string, bool) {
	movieID, ok := s.MovieID(favoriteID)
	if ok {
		delete(s.byMovie, movieID)
	}
	return movieID, ok
}

func (s *FavoriteSet) Len() int {
	return len(s.byMovie)
}
