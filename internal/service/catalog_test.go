package service

import (
	"context"
	"errors"
	"testing"

	"github.com/user/cinequeue/internal/model"
	"github.com/user/cinequeue/internal/repository"
)

func TestAddMovieAppendsToQueue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCurated(t, "1")
	s := f.loaded(t, newFakeIdentity("u1", "pw"))

	movie, err := s.AddMovie(ctx, "  ", "https://img.example.com/x.jpg")
	if err != nil {
		t.Fatalf("add movie: %v", err)
	}
	if movie.ID == "" || movie.Title != model.UntitledMovie || movie.Source != model.SourceUserSubmitted {
		t.Fatalf("unexpected movie: %+v", movie)
	}
	if !movie.OwnedBy("u1") || !movie.IsActive() {
		t.Fatalf("new movie should be active and owned by creator: %+v", movie)
	}

	queue := s.Queue()
	if len(queue) != 2 || queue[1].ID != movie.ID {
		t.Fatalf("new movie should be appended to the queue, got %v", movieIDs(queue))
	}

	// 其他用户看不到
	other := f.loaded(t, newFakeIdentity("u2", "pw"))
	for _, m := range other.Queue() {
		if m.ID == movie.ID {
			t.Fatalf("user movie leaked into another user's queue")
		}
	}
}

func TestAddMovieWriteFailure(t *testing.T) {
	f := newFixture(t)
	s := f.loaded(t, newFakeIdentity("u1", "pw"))
	f.store.FailOn(repository.OpAdd, repository.CollectionUserMovies, errBoom)

	if _, err := s.AddMovie(context.Background(), "Cidade de Deus", ""); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if s.Current().Remaining != 0 {
		t.Fatalf("failed write must not touch the queue")
	}
}

func TestDeactivateMovie(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUserMovie(t, "mine", "u1", true)
	f.seedUserMovie(t, "theirs", "u2", true)
	s := f.loaded(t, newFakeIdentity("u1", "pw"))

	if err := s.DeactivateMovie(ctx, "theirs"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user's movie, got %v", err)
	}
	if err := s.DeactivateMovie(ctx, "mine"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if s.Current().Remaining != 0 {
		t.Fatalf("deactivated movie should leave the queue")
	}

	docs, err := f.store.GetWhere(ctx, repository.CollectionUserMovies, repository.Where("active", false))
	if err != nil {
		t.Fatalf("get where: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "mine" {
		t.Fatalf("expected mine to be inactive, got %+v", docs)
	}

	if _, err := s.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if s.Current().Remaining != 0 {
		t.Fatalf("inactive movie should not come back on reload")
	}
}
