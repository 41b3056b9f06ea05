package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidDocument 存储中的文档结构不合法
var ErrInvalidDocument = errors.New("文档格式不合法")

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeFields 将松散的文档字段解析为强类型记录
func decodeFields(fields map[string]any, out any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func invalid(kind, id string, err error) error {
	return fmt.Errorf("%w: %s %q: %v", ErrInvalidDocument, kind, id, err)
}

// MovieFromDocument 解析电影文档，来源由所在集合决定
// 缺少标题时使用默认标题，而不是拒绝整条记录
func MovieFromDocument(id string, fields map[string]any, source MovieSource) (Movie, error) {
	var m Movie
	if err := decodeFields(fields, &m); err != nil {
		return Movie{}, invalid("movie", id, err)
	}
	m.ID = id
	m.Source = source
	if strings.TrimSpace(m.Title) == "" {
		m.Title = UntitledMovie
	}
	if err := validate.Struct(m); err != nil {
		return Movie{}, invalid("movie", id, err)
	}
	return m, nil
}

// ReviewFromDocument 解析评分文档，评分不在 [1,5] 内的记录会被拒绝
func ReviewFromDocument(id string, fields map[string]any) (Review, error) {
	var r Review
	if err := decodeFields(fields, &r); err != nil {
		return Review{}, invalid("review", id, err)
	}
	r.ID = id
	if err := validate.Struct(r); err != nil {
		return Review{}, invalid("review", id, err)
	}
	return r, nil
}

// FavoriteFromDocument 解析收藏文档
func FavoriteFromDocument(id string, fields map[string]any) (Favorite, error) {
	var f Favorite
	if err := decodeFields(fields, &f); err != nil {
		return Favorite{}, invalid("favorite", id, err)
	}
	f.ID = id
	if err := validate.Struct(f); err != nil {
		return Favorite{}, invalid("favorite", id, err)
	}
	return f, nil
}

// Fields 序列化为文档字段
func (u UserRef) Fields() map[string]any {
	return map[string]any{
		"id":    u.ID,
		"email": u.Email,
	}
}

// Fields 序列化为用户电影文档字段
func (m Movie) Fields() map[string]any {
	fields := map[string]any{
		"title":     m.Title,
		"posterUrl": m.PosterURL,
		"createdAt": m.CreatedAt,
	}
	if m.AddedBy != nil {
		fields["addedBy"] = m.AddedBy.Fields()
	}
	if m.Active != nil {
		fields["active"] = *m.Active
	}
	return fields
}

// Fields 序列化为评分文档字段
func (r Review) Fields() map[string]any {
	return map[string]any{
		"movieId":       r.MovieID,
		"title":         r.Title,
		"posterUrl":     r.PosterURL,
		"user":          r.User.Fields(),
		"rating":        r.Rating,
		"createdAt":     r.CreatedAt,
		"sourceOfMovie": string(r.SourceOfMovie),
		"isFavorite":    r.IsFavorite,
	}
}

// Fields 序列化为收藏文档字段
func (f Favorite) Fields() map[string]any {
	return map[string]any{
		"movieId":       f.MovieID,
		"title":         f.Title,
		"posterUrl":     f.PosterURL,
		"user":          f.User.Fields(),
		"createdAt":     f.CreatedAt,
		"sourceOfMovie": string(f.SourceOfMovie),
	}
}
