package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/config"
	"github.com/user/cinequeue/internal/model"
	"github.com/user/cinequeue/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrEmailTaken         = errors.New("该邮箱已被注册")
	ErrInvalidEmail       = errors.New("邮箱格式不正确")
	ErrWeakPassword       = errors.New("密码长度不足")
	ErrNotSignedIn        = errors.New("未登录")
	ErrInvalidToken       = errors.New("登录状态无效或已过期")
)

var validate = validator.New()

// Provider 身份服务，所有会话共享
type Provider struct {
	users             *repository.UserRepository
	secret            []byte
	expiry            time.Duration
	minPasswordLength int
	// revoked 已吊销的 jti 以及已注销用户的 ID，保留到 Token 自然过期
	revoked *cache.Cache
	log     *zap.Logger
}

func NewProvider(users *repository.UserRepository, cfg *config.Config, log *zap.Logger) *Provider {
	return &Provider{
		users:             users,
		secret:            []byte(cfg.AppSecret),
		expiry:            cfg.JWTExpiry,
		minPasswordLength: cfg.MinPasswordLength,
		revoked:           cache.New(cfg.JWTExpiry, 10*time.Minute),
		log:               log.Named("Auth"),
	}
}

// normalizeEmail 去空格并转小写
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp 注册并直接登录
func (p *Provider) SignUp(ctx context.Context, email, password string) (model.UserRef, string, error) {
	email = normalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return model.UserRef{}, "", ErrInvalidEmail
	}
	if len(password) < p.minPasswordLength {
		return model.UserRef{}, "", fmt.Errorf("%w: 至少 %d 位", ErrWeakPassword, p.minPasswordLength)
	}

	existing, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		return model.UserRef{}, "", err
	}
	if existing != nil {
		return model.UserRef{}, "", ErrEmailTaken
	}

	user, err := p.users.Create(ctx, email, password)
	if err != nil {
		return model.UserRef{}, "", err
	}
	p.log.Info("新用户注册", zap.String("user_id", user.ID))

	return p.issue(user.Ref())
}

// SignIn 邮箱密码登录
func (p *Provider) SignIn(ctx context.Context, email, password string) (model.UserRef, string, error) {
	user, err := p.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return model.UserRef{}, "", err
	}
	if user == nil || !p.users.CheckPassword(user, password) {
		return model.UserRef{}, "", ErrInvalidCredentials
	}
	return p.issue(user.Ref())
}

func (p *Provider) issue(user model.UserRef) (model.UserRef, string, error) {
	token, _, err := GenerateToken(user, p.secret, p.expiry)
	if err != nil {
		return model.UserRef{}, "", err
	}
	return user, token, nil
}

// Verify 校验 Token，返回其代表的用户
func (p *Provider) Verify(token string) (model.UserRef, error) {
	claims, err := ParseToken(token, p.secret)
	if err != nil {
		return model.UserRef{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if _, found := p.revoked.Get("jti:" + claims.ID); found {
		return model.UserRef{}, ErrInvalidToken
	}
	if _, found := p.revoked.Get("user:" + claims.UserID); found {
		return model.UserRef{}, ErrInvalidToken
	}
	return model.UserRef{ID: claims.UserID, Email: claims.Email}, nil
}

// Revoke 吊销单个 Token（退出登录），无效 Token 直接忽略
func (p *Provider) Revoke(token string) {
	claims, err := ParseToken(token, p.secret)
	if err != nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	p.revoked.Set("jti:"+claims.ID, struct{}{}, ttl)
}

// CheckPassword 重新验证用户密码
func (p *Provider) CheckPassword(ctx context.Context, userID, password string) error {
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || !p.users.CheckPassword(user, password) {
		return ErrInvalidCredentials
	}
	return nil
}

// Delete 删除身份记录并使该用户的全部 Token 失效，用户已不存在时视为成功
func (p *Provider) Delete(ctx context.Context, userID string) error {
	if err := p.users.Delete(ctx, userID); err != nil {
		return err
	}
	p.revoked.Set("user:"+userID, struct{}{}, cache.DefaultExpiration)
	p.log.Info("用户已注销", zap.String("user_id", userID))
	return nil
}
