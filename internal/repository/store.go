package repository

import (
	"context"
	"errors"
)

// 集合名称
const (
	CollectionMovies     = "movies"      // 官方精选电影
	CollectionUserMovies = "user_movies" // 用户添加的电影
	CollectionReviews    = "reviews"
	CollectionFavorites  = "favorites"
)

var (
	// ErrNotFound 文档不存在
	ErrNotFound = errors.New("文档不存在")
	// ErrAlreadyExists 指定 ID 的文档已存在
	ErrAlreadyExists = errors.New("文档已存在")
)

// Document 集合中的一条文档
type Document struct {
	ID     string
	Fields map[string]any
}

// Filter 等值过滤条件，Field 支持以点号访问嵌套字段，如 "user.id"
type Filter struct {
	Field string
	Value any
}

// Where 构造等值过滤条件
func Where(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// DocumentStore 文档存储访问接口
// 只保证单文档原子性，不提供跨集合事务
type DocumentStore interface {
	// GetAll 读取集合内全部文档
	GetAll(ctx context.Context, collection string) ([]Document, error)
	// GetWhere 读取满足全部等值条件的文档
	GetWhere(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	// Add 以随机 ID 新增文档并返回 ID
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	// Create 以指定 ID 新增文档，ID 已存在时返回 ErrAlreadyExists
	Create(ctx context.Context, collection, id string, fields map[string]any) error
	// UpdateByID 合并更新顶层字段，文档不存在时返回 ErrNotFound
	UpdateByID(ctx context.Context, collection, id string, fields map[string]any) error
	// DeleteByID 删除文档，文档不存在视为成功
	DeleteByID(ctx context.Context, collection, id string) error
}
