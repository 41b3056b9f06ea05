package auth

import (
	"context"
	"sync"

	"github.com/user/cinequeue/internal/model"
)

// Client 单个会话的身份访问器
type Client struct {
	provider *Provider

	mu    sync.RWMutex
	user  model.UserRef
	token string
}

func NewClient(provider *Provider) *Client {
	return &Client{provider: provider}
}

// Restore 用已校验的 Token 恢复登录状态
func (c *Client) Restore(user model.UserRef, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
	c.token = token
}

// SignIn 登录
func (c *Client) SignIn(ctx context.Context, email, password string) (model.UserRef, error) {
	user, token, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		return model.UserRef{}, err
	}
	c.Restore(user, token)
	return user, nil
}

// SignUp 注册
func (c *Client) SignUp(ctx context.Context, email, password string) (model.UserRef, error) {
	user, token, err := c.provider.SignUp(ctx, email, password)
	if err != nil {
		return model.UserRef{}, err
	}
	c.Restore(user, token)
	return user, nil
}

// SignOut 退出登录并吊销当前 Token
func (c *Client) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		c.provider.Revoke(c.token)
	}
	c.user = model.UserRef{}
	c.token = ""
}

// Reauthenticate 用当前用户的密码重新验证身份
func (c *Client) Reauthenticate(ctx context.Context, password string) error {
	user, ok := c.CurrentUser()
	if !ok {
		return ErrNotSignedIn
	}
	return c.provider.CheckPassword(ctx, user.ID, password)
}

// DeleteCurrentUser 删除当前用户的身份记录，成功后本地登录状态清空
func (c *Client) DeleteCurrentUser(ctx context.Context) error {
	user, ok := c.CurrentUser()
	if !ok {
		return ErrNotSignedIn
	}
	if err := c.provider.Delete(ctx, user.ID); err != nil {
		return err
	}
	c.mu.Lock()
	c.user = model.UserRef{}
	c.token = ""
	c.mu.Unlock()
	return nil
}

// CurrentUser 当前登录用户
func (c *Client) CurrentUser() (model.UserRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user, !c.user.IsZero()
}

// Token 当前会话的 Token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}
