package service

import (
	"context"

	"github.com/user/cinequeue/internal/model"
)

// Identity 会话使用的身份访问器
type Identity interface {
	CurrentUser() (model.UserRef, bool)
	Reauthenticate(ctx context.Context, password string) error
	DeleteCurrentUser(ctx context.Context) error
	SignOut()
	// Token 建立本次登录的 Token
	Token() string
}
