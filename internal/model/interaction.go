package model

import (
	"time"
)

// Review 评分记录，每次提交评分都会新建一条
type Review struct {
	ID            string      `json:"id" validate:"required"`
	MovieID       string      `json:"movieId" validate:"required"`
	Title         string      `json:"title"`
	PosterURL     string      `json:"posterUrl"`
	User          UserRef     `json:"user" validate:"required"`
	Rating        int         `json:"rating" validate:"min=1,max=5"`
	CreatedAt     time.Time   `json:"createdAt"`
	SourceOfMovie MovieSource `json:"sourceOfMovie"`
	// IsFavorite 旧版本写入的收藏标记，仅用于读取兼容，不再作为收藏依据
	IsFavorite bool `json:"isFavorite"`
}

// Favorite 收藏记录，逻辑上 (user, movieId) 唯一
type Favorite struct {
	ID            string      `json:"id" validate:"required"`
	MovieID       string      `json:"movieId" validate:"required"`
	Title         string      `json:"title"`
	PosterURL     string      `json:"posterUrl"`
	User          UserRef     `json:"user" validate:"required"`
	CreatedAt     time.Time   `json:"createdAt"`
	SourceOfMovie MovieSource `json:"sourceOfMovie"`
}

// NewReview 根据候选电影构造评分记录（冗余保存标题、海报和来源）
func NewReview(movie Movie, user UserRef, rating int, now time.Time) Review {
	return Review{
		MovieID:       movie.ID,
		Title:         movie.Title,
		PosterURL:     movie.PosterURL,
		User:          user,
		Rating:        rating,
		CreatedAt:     now,
		SourceOfMovie: movie.Source,
	}
}

// NewFavorite 根据候选电影构造收藏记录
func NewFavorite(movie Movie, user UserRef, now time.Time) Favorite {
	return Favorite{
		MovieID:       movie.ID,
		Title:         movie.Title,
		PosterURL:     movie.PosterURL,
		User:          user,
		CreatedAt:     now,
		SourceOfMovie: movie.Source,
	}
}

// Movie 从评分记录还原出电影信息（用于从历史记录加入收藏）
func (r Review) Movie() Movie {
	return Movie{
		ID:        r.MovieID,
		Title:     r.Title,
		PosterURL: r.PosterURL,
		Source:    r.SourceOfMovie,
	}
}
