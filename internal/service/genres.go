package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
)

// GenresService implements genre management. Genre names are unique
// case-insensitively.
type GenresService struct {
	genres repository.GenreStore
	log    *zap.Logger
}

func NewGenresService(genres repository.GenreStore, log *zap.Logger) *GenresService {
	return &GenresService{genres: genres, log: log.Named("genres")}
}

func (s *GenresService) Create(ctx context.Context, name string) (model.Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Genre{}, fmt.Errorf("%w: name required", ErrInvalidArgument)
	}
	if _, err := s.genres.GetByName(ctx, name); err == nil {
		return model.Genre{}, repository.ErrConflict
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.Genre{}, err
	}
	g, err := s.genres.Create(ctx, model.Genre{Name: name})
	if err != nil {
		return model.Genre{}, err
	}
	s.log.Info("genre created", zap.String("genre_id", g.ID), zap.String("name", g.Name))
	return g, nil
}

func (s *GenresService) Get(ctx context.Context, id string) (model.Genre, error) {
	return s.genres.GetByID(ctx, id)
}

func (s *GenresService) List(ctx context.Context, q repository.ListQuery, search string) (repository.Page[model.Genre], error) {
	return s.genres.List(ctx, q, repository.GenreFilter{Search: search})
}

// Update renames a genre. A different genre already holding the name
// (case-insensitively) is a conflict; renaming a genre to a casing
// variant of itself is allowed.
func (s *GenresService) Update(ctx context.Context, id, name string) (model.Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Genre{}, fmt.Errorf("%w: name required", ErrInvalidArgument)
	}
	if ex, err := s.genres.GetByName(ctx, name); err == nil && ex.ID != id {
		return model.Genre{}, repository.ErrConflict
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return model.Genre{}, err
	}
	g, err := s.genres.GetByID(ctx, id)
	if err != nil {
		return model.Genre{}, err
	}
	g.Name = name
	g, err = s.genres.Update(ctx, g)
	if err != nil {
		return model.Genre{}, err
	}
	s.log.Info("genre updated", zap.String("genre_id", g.ID))
	return g, nil
}

func (s *GenresService) Delete(ctx context.Context, id string) error {
	if err := s.genres.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("genre deleted", zap.String("genre_id", id))
	return nil
}
