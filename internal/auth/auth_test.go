package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/user/cinequeue/internal/config"
	"github.com/user/cinequeue/internal/model"
	"github.com/user/cinequeue/internal/repository"
)

func setupProvider(t *testing.T) *Provider {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		AppSecret:         "test-secret",
		JWTExpiry:         time.Hour,
		MinPasswordLength: 6,
	}
	return NewProvider(repository.NewUserRepository(db), cfg, zap.NewNop())
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	p := setupProvider(t)

	user, token, err := p.SignUp(ctx, "  Ana@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Fatalf("email should be normalized, got %q", user.Email)
	}
	verified, err := p.Verify(token)
	if err != nil || verified != user {
		t.Fatalf("verify: %+v %v", verified, err)
	}

	if _, _, err := p.SignUp(ctx, "ana@example.com", "another1"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, _, err := p.SignUp(ctx, "bob@example.com", "123"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, _, err := p.SignUp(ctx, "not-an-email", "secret1"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	if _, _, err := p.SignIn(ctx, "ANA@example.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if _, _, err := p.SignIn(ctx, "ana@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := p.SignIn(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestVerifyRejectsRevokedAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	p := setupProvider(t)

	_, token, err := p.SignUp(ctx, "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	_, other, err := p.SignIn(ctx, "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	p.Revoke(token)
	if _, err := p.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("revoked token should fail, got %v", err)
	}
	if _, err := p.Verify(other); err != nil {
		t.Fatalf("other token should stay valid: %v", err)
	}

	forged, _, err := GenerateToken(mustVerify(t, p, other), []byte("another-secret"), time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := p.Verify(forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token signed with another secret should fail, got %v", err)
	}
}

func TestClientDeleteCurrentUser(t *testing.T) {
	ctx := context.Background()
	p := setupProvider(t)
	client := NewClient(p)

	if _, ok := client.CurrentUser(); ok {
		t.Fatalf("new client should be signed out")
	}
	if err := client.Reauthenticate(ctx, "secret1"); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}

	user, err := client.SignUp(ctx, "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	token := client.Token()

	if err := client.Reauthenticate(ctx, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := client.Reauthenticate(ctx, "secret1"); err != nil {
		t.Fatalf("reauthenticate: %v", err)
	}

	if err := client.DeleteCurrentUser(ctx); err != nil {
		t.Fatalf("delete current user: %v", err)
	}
	if _, ok := client.CurrentUser(); ok {
		t.Fatalf("client should be signed out after deletion")
	}
	if _, err := p.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token of deleted user should fail, got %v", err)
	}
	if _, _, err := p.SignIn(ctx, user.Email, "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("deleted user should not sign in, got %v", err)
	}
	// 重试删除同样成功
	if err := p.Delete(ctx, user.ID); err != nil {
		t.Fatalf("repeated delete: %v", err)
	}
}

func TestClientSignOut(t *testing.T) {
	ctx := context.Background()
	p := setupProvider(t)
	if _, _, err := p.SignUp(ctx, "ana@example.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	client := NewClient(p)
	if _, err := client.SignIn(ctx, "ana@example.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	token := client.Token()
	client.SignOut()

	if _, ok := client.CurrentUser(); ok {
		t.Fatalf("expected signed out client")
	}
	if _, err := p.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("signed out token should fail, got %v", err)
	}
}

func mustVerify(t *testing.T, p *Provider, token string) model.UserRef {
	t.Helper()
	user, err := p.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	return user
}
