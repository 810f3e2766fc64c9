package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
)

// ItemsService implements the item catalogue. Every mutating operation
// on an item verifies that the requester owns it or carries the ADMIN
// role.
type ItemsService struct {
	items  repository.ItemStore
	genres repository.ItemGenreStore
	log    *zap.Logger
}

func NewItemsService(items repository.ItemStore, genres repository.ItemGenreStore, log *zap.Logger) *ItemsService {
	return &ItemsService{items: items, genres: genres, log: log.Named("items")}
}

// Requester identifies the authenticated caller for ownership checks.
type Requester struct {
	ID    string
	Admin bool
}

// CreateItemParams carries the item creation input.
type CreateItemParams struct {
	Title       string
	Type        model.ItemType
	Description *string
	Note        *string
	ImageURL    *string
	IsPublic    bool
}

// UpdateItemParams carries a partial item update.
type UpdateItemParams struct {
	Title       *string
	Type        *model.ItemType
	Description *string
	Note        *string
	ImageURL    *string
	IsPublic    *bool
}

// ItemWithGenres pairs an item with its attached genres.
type ItemWithGenres struct {
	model.Item
	Genres []model.Genre
}

func (s *ItemsService) Create(ctx context.Context, ownerID string, p CreateItemParams) (model.Item, error) {
	if p.Title == "" {
		return model.Item{}, fmt.Errorf("%w: title required", ErrInvalidArgument)
	}
	if !model.ValidItemType(p.Type) {
		return model.Item{}, fmt.Errorf("%w: unknown item type %q", ErrInvalidArgument, p.Type)
	}
	it, err := s.items.Create(ctx, model.Item{
		Title:       p.Title,
		Type:        p.Type,
		Description: p.Description,
		Note:        p.Note,
		ImageURL:    p.ImageURL,
		UserID:      ownerID,
		IsPublic:    p.IsPublic,
	})
	if err != nil {
		return model.Item{}, err
	}
	s.log.Info("item created", zap.String("item_id", it.ID), zap.String("owner", ownerID))
	return it, nil
}

// Get returns the item when it is public or the requester may see it
// (owner or admin). A private item reads as not found to everyone else
// rather than leaking its existence.
func (s *ItemsService) Get(ctx context.Context, id string, req Requester) (model.Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return model.Item{}, err
	}
	if !it.IsPublic && it.UserID != req.ID && !req.Admin {
		return model.Item{}, repository.ErrNotFound
	}
	return it, nil
}

// GetWithGenres resolves the item and its genres in one call.
func (s *ItemsService) GetWithGenres(ctx context.Context, id string, req Requester) (ItemWithGenres, error) {
	it, err := s.Get(ctx, id, req)
	if err != nil {
		return ItemWithGenres{}, err
	}
	gs, err := s.genres.GenresByItem(ctx, it.ID)
	if err != nil {
		return ItemWithGenres{}, err
	}
	return ItemWithGenres{Item: it, Genres: gs}, nil
}

// List pages through items visible to the requester: public items plus
// the requester's own, or everything for an admin.
func (s *ItemsService) List(ctx context.Context, q repository.ListQuery, f repository.ItemFilter, req Requester) (repository.Page[model.Item], error) {
	f.ViewerID = req.ID
	f.IncludeHidden = req.Admin
	if f.Type != "" && !model.ValidItemType(f.Type) {
		return repository.Page[model.Item]{}, fmt.Errorf("%w: unknown item type %q", ErrInvalidArgument, f.Type)
	}
	return s.items.List(ctx, q, f)
}

func (s *ItemsService) Update(ctx context.Context, id string, p UpdateItemParams, req Requester) (model.Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return model.Item{}, err
	}
	if it.UserID != req.ID && !req.Admin {
		return model.Item{}, ErrForbidden
	}
	if p.Title != nil {
		if *p.Title == "" {
			return model.Item{}, fmt.Errorf("%w: title required", ErrInvalidArgument)
		}
		it.Title = *p.Title
	}
	if p.Type != nil {
		if !model.ValidItemType(*p.Type) {
			return model.Item{}, fmt.Errorf("%w: unknown item type %q", ErrInvalidArgument, *p.Type)
		}
		it.Type = *p.Type
	}
	if p.Description != nil {
		it.Description = p.Description
	}
	if p.Note != nil {
		it.Note = p.Note
	}
	if p.ImageURL != nil {
		it.ImageURL = p.ImageURL
	}
	if p.IsPublic != nil {
		it.IsPublic = *p.IsPublic
	}
	it, err = s.items.Update(ctx, it)
	if err != nil {
		return model.Item{}, err
	}
	s.log.Info("item updated", zap.String("item_id", it.ID))
	return it, nil
}

func (s *ItemsService) Delete(ctx context.Context, id string, req Requester) error {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if it.UserID != req.ID && !req.Admin {
		return ErrForbidden
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("item deleted", zap.String("item_id", id))
	return nil
}
