package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
)

// ItemGenresService manages the item-genre relationship.
type ItemGenresService struct {
	items      repository.ItemStore
	genres     repository.GenreStore
	itemGenres repository.ItemGenreStore
	log        *zap.Logger
}

func NewItemGenresService(items repository.ItemStore, genres repository.GenreStore, itemGenres repository.ItemGenreStore, log *zap.Logger) *ItemGenresService {
	return &ItemGenresService{items: items, genres: genres, itemGenres: itemGenres, log: log.Named("item_genres")}
}

// Create links an item to a genre. Both sides must exist and the pair
// must not be linked yet.
func (s *ItemGenresService) Create(ctx context.Context, itemID, genreID string) (model.ItemGenre, error) {
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ItemGenre{}, fmt.Errorf("item %s: %w", itemID, repository.ErrNotFound)
		}
		return model.ItemGenre{}, err
	}
	if _, err := s.genres.GetByID(ctx, genreID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ItemGenre{}, fmt.Errorf("genre %s: %w", genreID, repository.ErrNotFound)
		}
		return model.ItemGenre{}, err
	}
	ig, err := s.itemGenres.Create(ctx, model.ItemGenre{ItemID: itemID, GenreID: genreID})
	if err != nil {
		return model.ItemGenre{}, err
	}
	s.log.Info("genre linked to item", zap.String("item_id", itemID), zap.String("genre_id", genreID))
	return ig, nil
}

func (s *ItemGenresService) List(ctx context.Context, q repository.ListQuery, f repository.ItemGenreFilter) (repository.Page[model.ItemGenre], error) {
	return s.itemGenres.List(ctx, q, f)
}

func (s *ItemGenresService) Delete(ctx context.Context, itemID, genreID string) error {
	if err := s.itemGenres.DeleteByPair(ctx, itemID, genreID); err != nil {
		return err
	}
	s.log.Info("genre unlinked from item", zap.String("item_id", itemID), zap.String("genre_id", genreID))
	return nil
}
