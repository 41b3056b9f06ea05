package model

import (
	"time"
)

// UserRef 文档中引用的用户信息，写入后不再修改
type UserRef struct {
	ID    string `json:"id" validate:"required"`
	Email string `json:"email"`
}

// IsZero 判断是否为空引用
func (u UserRef) IsZero() bool {
	return u.ID == ""
}

// User 身份记录
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// Ref 转换为文档引用
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Email: u.Email}
}

// SessionUser 专门用于 Session 存储的用户信息结构
type SessionUser struct {
	ID    string
	Email string
	Token string
}
