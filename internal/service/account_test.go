package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/repository"
)

func seedAccountData(t *testing.T, f *fixture) {
	t.Helper()
	f.seedCurated(t, "1", "2", "3")
	for _, id := range []string{"1", "2", "3"} {
		f.seedReview(t, "u1", id, 4)
		f.seedFavorite(t, "u1", id)
	}
	f.seedReview(t, "u2", "1", 2)
	f.seedFavorite(t, "u2", "1")
}

// P5
func TestDeleteAccountRemovesEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedAccountData(t, f)
	identity := newFakeIdentity("u1", "pw")
	s := f.loaded(t, identity)

	if err := s.DeleteAccount(ctx, "pw"); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if got := s.CascadeState(); got != CascadeDone {
		t.Fatalf("expected done, got %s", got)
	}
	if n := f.countFor(t, repository.CollectionReviews, "u1"); n != 0 {
		t.Fatalf("expected no reviews left, got %d", n)
	}
	if n := f.countFor(t, repository.CollectionFavorites, "u1"); n != 0 {
		t.Fatalf("expected no favorites left, got %d", n)
	}
	if !identity.isDeleted() {
		t.Fatalf("identity record should be deleted")
	}
	if err := identity.Reauthenticate(ctx, "pw"); err == nil {
		t.Fatalf("deleted identity should no longer authenticate")
	}

	// 其他用户的数据不受影响
	if f.countFor(t, repository.CollectionReviews, "u2") != 1 || f.countFor(t, repository.CollectionFavorites, "u2") != 1 {
		t.Fatalf("other user's documents must survive")
	}
	if err := s.DeleteAccount(ctx, "pw"); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn after completion, got %v", err)
	}
}

// Scenario D
func TestDeleteAccountWrongPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedAccountData(t, f)
	identity := newFakeIdentity("u1", "pw")
	s := f.loaded(t, identity)

	err := s.DeleteAccount(ctx, "nope")
	if !errors.Is(err, ErrAuth) || !errors.Is(err, errWrongPassword) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if got := s.CascadeState(); got != CascadeIdle {
		t.Fatalf("expected idle, got %s", got)
	}
	if f.store.Len(repository.CollectionReviews) != 4 || f.store.Len(repository.CollectionFavorites) != 4 {
		t.Fatalf("no documents may be deleted on failed reauthentication")
	}
	if identity.isDeleted() {
		t.Fatalf("identity must survive")
	}
}

func TestDeleteAccountPartialFailureKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedAccountData(t, f)
	identity := newFakeIdentity("u1", "pw")
	s := f.loaded(t, identity)

	f.store.FailOn(repository.OpDelete, repository.CollectionFavorites, errBoom)
	err := s.DeleteAccount(ctx, "pw")
	if !errors.Is(err, ErrCascade) || !errors.Is(err, errBoom) {
		t.Fatalf("expected ErrCascade, got %v", err)
	}
	if got := s.CascadeState(); got != CascadeFailed {
		t.Fatalf("expected failed, got %s", got)
	}
	if identity.isDeleted() {
		t.Fatalf("identity must not be deleted after partial failure")
	}
	// 已删除的评分不回滚
	if n := f.countFor(t, repository.CollectionReviews, "u1"); n != 0 {
		t.Fatalf("reviews deleted before the failure stay deleted, got %d", n)
	}

	// 重试时对已删除的文档是幂等的
	f.store.FailOn(repository.OpDelete, repository.CollectionFavorites, nil)
	if err := s.DeleteAccount(ctx, "pw"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if f.countFor(t, repository.CollectionFavorites, "u1") != 0 || !identity.isDeleted() {
		t.Fatalf("retry should complete the cascade")
	}
}

func TestDeleteAccountIdentityFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedAccountData(t, f)
	identity := newFakeIdentity("u1", "pw")
	identity.deleteErr = errBoom
	s := f.loaded(t, identity)

	if err := s.DeleteAccount(ctx, "pw"); !errors.Is(err, ErrCascade) {
		t.Fatalf("expected ErrCascade, got %v", err)
	}
	if got := s.CascadeState(); got != CascadeFailed {
		t.Fatalf("expected failed, got %s", got)
	}
}

func TestDeleteAccountReadFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedAccountData(t, f)
	identity := newFakeIdentity("u1", "pw")
	s := f.loaded(t, identity)

	f.store.FailOn(repository.OpGetWhere, repository.CollectionReviews, errBoom)
	if err := s.DeleteAccount(ctx, "pw"); !errors.Is(err, ErrCascade) {
		t.Fatalf("expected ErrCascade, got %v", err)
	}
	if f.store.Len(repository.CollectionFavorites) != 4 || identity.isDeleted() {
		t.Fatalf("nothing may be deleted when the cascade cannot list documents")
	}
}

func TestWritesRejectedWhileDeletingAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCurated(t, "1", "2")
	s := f.loaded(t, newFakeIdentity("u1", "pw"))
	movie := s.Queue()[0]

	for _, state := range []CascadeState{CascadeReauthenticating, CascadeDeleting} {
		s.setCascade(state)
		if _, err := s.SubmitRating(ctx, movie, 4); !errors.Is(err, ErrCascade) {
			t.Fatalf("%s: expected ErrCascade for rating, got %v", state, err)
		}
		if _, err := s.AddFavorite(ctx, movie); !errors.Is(err, ErrCascade) {
			t.Fatalf("%s: expected ErrCascade for favorite, got %v", state, err)
		}
		if _, err := s.AddMovie(ctx, "Late", ""); !errors.Is(err, ErrCascade) {
			t.Fatalf("%s: expected ErrCascade for add movie, got %v", state, err)
		}
	}

	if n := f.countFor(t, repository.CollectionReviews, "u1"); n != 0 {
		t.Fatalf("expected no reviews, got %d", n)
	}
	if n := f.countFor(t, repository.CollectionFavorites, "u1"); n != 0 {
		t.Fatalf("expected no favorites, got %d", n)
	}
	if n := f.store.Len(repository.CollectionUserMovies); n != 0 {
		t.Fatalf("expected no user movies, got %d", n)
	}

	// 失败后允许继续写入
	s.setCascade(CascadeFailed)
	if _, err := s.SubmitRating(ctx, movie, 4); err != nil {
		t.Fatalf("rating after failed cascade: %v", err)
	}
}

// gatedStore 评分写入在 release 关闭前阻塞
type gatedStore struct {
	*repository.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if collection == repository.CollectionReviews {
		close(g.entered)
		<-g.release
	}
	return g.MemoryStore.Add(ctx, collection, fields)
}

func TestDeleteAccountWaitsForInflightWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCurated(t, "1")
	store := &gatedStore{
		MemoryStore: f.store,
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	f.repos = repository.NewRepositories(nil, store, zap.NewNop())
	identity := newFakeIdentity("u1", "pw")
	s := f.loaded(t, identity)

	rated := make(chan error, 1)
	go func() {
		_, err := s.RateCurrent(ctx, 5)
		rated <- err
	}()
	<-store.entered

	deleted := make(chan error, 1)
	go func() {
		deleted <- s.DeleteAccount(ctx, "pw")
	}()
	for s.CascadeState() == CascadeIdle {
		time.Sleep(time.Millisecond)
	}
	close(store.release)

	if err := <-rated; err != nil {
		t.Fatalf("in-flight rating: %v", err)
	}
	if err := <-deleted; err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if n := f.countFor(t, repository.CollectionReviews, "u1"); n != 0 {
		t.Fatalf("in-flight review should be deleted with the account, got %d", n)
	}
	if !identity.isDeleted() {
		t.Fatalf("identity should be deleted")
	}
}
