package model

import (
	"errors"
	"testing"
	"time"
)

func TestMovieFromDocumentDefaultsTitle(t *testing.T) {
	m, err := MovieFromDocument("m1", map[string]any{"posterUrl": "http://img/1.jpg"}, SourceCurated)
	if err != nil {
		t.Fatalf("decode movie: %v", err)
	}
	if m.Title != UntitledMovie {
		t.Fatalf("expected default title, got %q", m.Title)
	}
	if m.ID != "m1" || m.Source != SourceCurated {
		t.Fatalf("unexpected movie: %+v", m)
	}
	if !m.IsActive() {
		t.Fatalf("movie without active flag should be active")
	}
}

func TestMovieFromDocumentUserSubmitted(t *testing.T) {
	fields := map[string]any{
		"title":   "Central do Brasil",
		"addedBy": map[string]any{"id": "u1", "email": "a@b.c"},
		"active":  false,
	}
	m, err := MovieFromDocument("m2", fields, SourceUserSubmitted)
	if err != nil {
		t.Fatalf("decode movie: %v", err)
	}
	if !m.OwnedBy("u1") || m.OwnedBy("u2") {
		t.Fatalf("unexpected owner: %+v", m.AddedBy)
	}
	if m.IsActive() {
		t.Fatalf("expected inactive movie")
	}
}

func TestMovieFromDocumentRejectsBadOwner(t *testing.T) {
	fields := map[string]any{"title": "x", "addedBy": map[string]any{"email": "a@b.c"}}
	if _, err := MovieFromDocument("m3", fields, SourceUserSubmitted); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestReviewRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	movie := Movie{ID: "m1", Title: "Cidade de Deus", PosterURL: "p", Source: SourceCurated}
	r := NewReview(movie, UserRef{ID: "u1", Email: "a@b.c"}, 4, now)

	got, err := ReviewFromDocument("r1", r.Fields())
	if err != nil {
		t.Fatalf("decode review: %v", err)
	}
	if got.ID != "r1" || got.MovieID != "m1" || got.Rating != 4 || got.User.ID != "u1" {
		t.Fatalf("unexpected review: %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("createdAt mismatch: %v", got.CreatedAt)
	}
	if got.Movie().ID != "m1" || got.Movie().Source != SourceCurated {
		t.Fatalf("unexpected movie from review: %+v", got.Movie())
	}
}

func TestReviewFromDocumentRejectsRating(t *testing.T) {
	for _, rating := range []int{0, 6} {
		fields := map[string]any{"movieId": "m1", "user": map[string]any{"id": "u1"}, "rating": rating}
		if _, err := ReviewFromDocument("r1", fields); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("rating %d: expected ErrInvalidDocument, got %v", rating, err)
		}
	}
}

func TestFavoriteFromDocumentRequiresUser(t *testing.T) {
	if _, err := FavoriteFromDocument("f1", map[string]any{"movieId": "m1"}); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	f, err := FavoriteFromDocument("f1", map[string]any{"movieId": "m1", "user": map[string]any{"id": "u1"}})
	if err != nil {
		t.Fatalf("decode favorite: %v", err)
	}
	if f.MovieID != "m1" || f.User.ID != "u1" {
		t.Fatalf("unexpected favorite: %+v", f)
	}
}
