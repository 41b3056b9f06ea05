package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/model"
	"github.com/user/cinequeue/internal/repository"
)

// fakeIdentity 内存中的身份访问器
type fakeIdentity struct {
	mu        sync.Mutex
	user      model.UserRef
	password  string
	token     string
	signedIn  bool
	deleted   bool
	deleteErr error
}

func newFakeIdentity(id, password string) *fakeIdentity {
	return &fakeIdentity{
		user:     model.UserRef{ID: id, Email: id + "@example.com"},
		password: password,
		token:    "token-" + id,
		signedIn: true,
	}
}

func (f *fakeIdentity) CurrentUser() (model.UserRef, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.signedIn {
		return model.UserRef{}, false
	}
	return f.user, true
}

func (f *fakeIdentity) Reauthenticate(_ context.Context, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.signedIn || f.deleted || password != f.password {
		return errWrongPassword
	}
	return nil
}

func (f *fakeIdentity) DeleteCurrentUser(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = true
	f.signedIn = false
	return nil
}

func (f *fakeIdentity) SignOut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedIn = false
}

func (f *fakeIdentity) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.signedIn {
		return ""
	}
	return f.token
}

func (f *fakeIdentity) isDeleted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleted
}

type testError string

func (e testError) Error() string { return string(e) }

const (
	errWrongPassword = testError("wrong password")
	errBoom          = testError("boom")
)

// steppingClock 每次调用前进一秒，保证 createdAt 严格递增
func steppingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

// keepOrder 不打乱，便于断言
func keepOrder([]model.Movie) {}

type fixture struct {
	store *repository.MemoryStore
	repos *repository.Repositories
	clock func() time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	return &fixture{
		store: store,
		repos: repository.NewRepositories(nil, store, zap.NewNop()),
		clock: steppingClock(),
	}
}

func (f *fixture) seedCurated(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := f.store.Create(context.Background(), repository.CollectionMovies, id, map[string]any{
			"title":     "Movie " + id,
			"posterUrl": "https://img.example.com/" + id + ".jpg",
		}); err != nil {
			t.Fatalf("seed curated %s: %v", id, err)
		}
	}
}

func (f *fixture) seedUserMovie(t *testing.T, id, owner string, active bool) {
	t.Helper()
	if err := f.store.Create(context.Background(), repository.CollectionUserMovies, id, map[string]any{
		"title":   "Own " + id,
		"addedBy": map[string]any{"id": owner, "email": owner + "@example.com"},
		"active":  active,
	}); err != nil {
		t.Fatalf("seed user movie %s: %v", id, err)
	}
}

func (f *fixture) seedReview(t *testing.T, userID, movieID string, rating int) model.Review {
	t.Helper()
	user := model.UserRef{ID: userID, Email: userID + "@example.com"}
	movie := model.Movie{ID: movieID, Title: "Movie " + movieID, Source: model.SourceCurated}
	review, err := f.repos.Review.Add(context.Background(), model.NewReview(movie, user, rating, f.clock()))
	if err != nil {
		t.Fatalf("seed review: %v", err)
	}
	return review
}

func (f *fixture) seedFavorite(t *testing.T, userID, movieID string) model.Favorite {
	t.Helper()
	user := model.UserRef{ID: userID, Email: userID + "@example.com"}
	movie := model.Movie{ID: movieID, Title: "Movie " + movieID, Source: model.SourceCurated}
	fav, err := f.repos.Favorite.Add(context.Background(), model.NewFavorite(movie, user, f.clock()))
	if err != nil {
		t.Fatalf("seed favorite: %v", err)
	}
	return fav
}

func (f *fixture) session(t *testing.T, identity Identity) *Session {
	t.Helper()
	s, err := NewSession(identity, f.repos, zap.NewNop(), WithShuffle(keepOrder), WithClock(f.clock))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

// loaded 创建并加载会话
func (f *fixture) loaded(t *testing.T, identity Identity) *Session {
	t.Helper()
	s := f.session(t, identity)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func (f *fixture) countFor(t *testing.T, collection, userID string) int {
	t.Helper()
	docs, err := f.store.GetWhere(context.Background(), collection, repository.Where("user.id", userID))
	if err != nil {
		t.Fatalf("count %s: %v", collection, err)
	}
	return len(docs)
}

func movieIDs(movies []model.Movie) []string {
	ids := make([]string, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	return ids
}

func currentID(t *testing.T, s *Session) string {
	t.Helper()
	view := s.Current()
	if view.Current == nil {
		return ""
	}
	return view.Current.ID
}
