package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
)

func TestGenreCreate(t *testing.T) {
	stores := repository.NewMemoryStores()
	svc := NewGenresService(stores.Genres, zap.NewNop())
	ctx := context.Background()

	g, err := svc.Create(ctx, "  Science Fiction  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Name != "Science Fiction" {
		t.Fatalf("name = %q, want trimmed", g.Name)
	}

	if _, err := svc.Create(ctx, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty name: got %v", err)
	}
	if _, err := svc.Create(ctx, "science fiction"); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("case-insensitive duplicate: got %v, want ErrConflict", err)
	}
}

func TestGenreUpdate(t *testing.T) {
	stores := repository.NewMemoryStores()
	svc := NewGenresService(stores.Genres, zap.NewNop())
	ctx := context.Background()

	horror, _ := svc.Create(ctx, "Horror")
	svc.Create(ctx, "Drama")

	if _, err := svc.Update(ctx, horror.ID, "drama"); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("rename onto existing: got %v, want ErrConflict", err)
	}
	// changing only the casing of its own name is fine
	g, err := svc.Update(ctx, horror.ID, "HORROR")
	if err != nil {
		t.Fatalf("casing rename: %v", err)
	}
	if g.Name != "HORROR" {
		t.Fatalf("name = %q", g.Name)
	}
	if _, err := svc.Update(ctx, "missing", "x"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing genre: got %v", err)
	}
}

func TestItemGenreLink(t *testing.T) {
	stores := repository.NewMemoryStores()
	svc := NewItemGenresService(stores.Items, stores.Genres, stores.ItemGenres, zap.NewNop())
	ctx := context.Background()

	it, _ := stores.Items.Create(ctx, model.Item{Title: "x", Type: model.ItemTypeGame, UserID: "u", IsPublic: true})
	g, _ := stores.Genres.Create(ctx, model.Genre{Name: "rpg"})

	if _, err := svc.Create(ctx, "missing-item", g.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown item: got %v", err)
	}
	if _, err := svc.Create(ctx, it.ID, "missing-genre"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown genre: got %v", err)
	}

	ig, err := svc.Create(ctx, it.ID, g.ID)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if ig.ItemID != it.ID || ig.GenreID != g.ID {
		t.Fatalf("link = %+v", ig)
	}
	if _, err := svc.Create(ctx, it.ID, g.ID); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("duplicate link: got %v, want ErrConflict", err)
	}

	page, err := svc.List(ctx, repository.ListQuery{}, repository.ItemGenreFilter{ItemID: it.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalItems != 1 {
		t.Fatalf("TotalItems = %d, want 1", page.TotalItems)
	}

	if err := svc.Delete(ctx, it.ID, g.ID); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	if err := svc.Delete(ctx, it.ID, g.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("double unlink: got %v, want ErrNotFound", err)
	}
}
