package model

import (
	"time"
)

// MovieSource 电影来源
type MovieSource string

const (
	// SourceCurated 官方精选（全局可见）
	SourceCurated MovieSource = "curated"
	// SourceUserSubmitted 用户自行添加（仅创建者可见，且需处于 active 状态）
	SourceUserSubmitted MovieSource = "user_submitted"
)

// Valid 判断来源是否合法
func (s MovieSource) Valid() bool {
	return s == SourceCurated || s == SourceUserSubmitted
}

// UntitledMovie 缺少标题时的默认值
const UntitledMovie = "Untitled"

// Movie 候选电影
type Movie struct {
	ID        string      `json:"id" validate:"required"`
	Title     string      `json:"title"`
	PosterURL string      `json:"posterUrl"`
	Source    MovieSource `json:"source" validate:"required,oneof=curated user_submitted"`
	AddedBy   *UserRef    `json:"addedBy,omitempty"`
	Active    *bool       `json:"active,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// IsActive 未设置 active 字段的电影视为有效（精选电影通常不带该字段）
func (m Movie) IsActive() bool {
	return m.Active == nil || *m.Active
}

// OwnedBy 判断电影是否由指定用户添加
func (m Movie) OwnedBy(userID string) bool {
	return m.AddedBy != nil && m.AddedBy.ID == userID
}
