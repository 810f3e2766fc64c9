package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/queue"
	"github.com/iliyamo/media-backlog/internal/repository"
)

// ratings are small integers on a 1..10 scale
const (
	minRating = 1
	maxRating = 10
)

// UserItemsService implements the per-user backlog: adding items,
// progressing through statuses, rating and ordering them.
//
// Publish, when set, receives a BacklogActivityEvent after each
// successful mutation. Publish failures are logged and ignored; the
// event stream is an observer, not part of the request contract.
type UserItemsService struct {
	userItems repository.UserItemStore
	items     repository.ItemStore
	Publish   func(ctx context.Context, ev queue.BacklogActivityEvent) error
	log       *zap.Logger
}

func NewUserItemsService(userItems repository.UserItemStore, items repository.ItemStore, log *zap.Logger) *UserItemsService {
	return &UserItemsService{userItems: userItems, items: items, log: log.Named("user_items")}
}

// AddParams carries the add-to-backlog input. Status defaults to
// pending when empty.
type AddParams struct {
	ItemID string
	Status model.BacklogStatus
	Rating *int
	Order  *int
}

func (s *UserItemsService) validateRating(rating *int) error {
	if rating != nil && (*rating < minRating || *rating > maxRating) {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidArgument, minRating, maxRating)
	}
	return nil
}

func (s *UserItemsService) emit(ctx context.Context, action string, ui model.UserItem, title string) {
	if s.Publish == nil {
		return
	}
	ev := queue.BacklogActivityEvent{
		Action:    action,
		UserID:    ui.UserID,
		ItemID:    ui.ItemID,
		ItemTitle: title,
		Status:    string(ui.Status),
		Rating:    ui.Rating,
		Order:     ui.Order,
		At:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Publish(ctx, ev); err != nil {
		s.log.Warn("publish backlog activity failed", zap.Error(err))
	}
}

// Add puts an item on the user's backlog. The item must exist; a user
// tracks an item at most once.
func (s *UserItemsService) Add(ctx context.Context, userID string, p AddParams) (model.UserItem, error) {
	it, err := s.items.GetByID(ctx, p.ItemID)
	if err != nil {
		return model.UserItem{}, err
	}
	status := p.Status
	if status == "" {
		status = model.StatusPending
	}
	if !model.ValidBacklogStatus(status) {
		return model.UserItem{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, status)
	}
	if err := s.validateRating(p.Rating); err != nil {
		return model.UserItem{}, err
	}
	ui, err := s.userItems.Create(ctx, model.UserItem{
		UserID:  userID,
		ItemID:  p.ItemID,
		Status:  status,
		Rating:  p.Rating,
		Order:   p.Order,
		AddedAt: time.Now().UTC(),
	})
	if err != nil {
		return model.UserItem{}, err
	}
	s.log.Info("item added to backlog", zap.String("user_id", userID), zap.String("item_id", p.ItemID))
	s.emit(ctx, queue.ActionAdded, ui, it.Title)
	return ui, nil
}

func (s *UserItemsService) List(ctx context.Context, userID string, q repository.ListQuery, f repository.BacklogFilter) (repository.Page[model.UserItem], error) {
	if f.Status != "" && !model.ValidBacklogStatus(f.Status) {
		return repository.Page[model.UserItem]{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, f.Status)
	}
	return s.userItems.ListByUser(ctx, userID, q, f)
}

// Update changes status, rating and/or order of a backlog entry.
func (s *UserItemsService) Update(ctx context.Context, userID, itemID string, upd repository.UserItemUpdate) (model.UserItem, error) {
	if upd.Status != nil && !model.ValidBacklogStatus(*upd.Status) {
		return model.UserItem{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, *upd.Status)
	}
	if err := s.validateRating(upd.Rating); err != nil {
		return model.UserItem{}, err
	}
	ui, err := s.userItems.UpdateByUserAndItem(ctx, userID, itemID, upd)
	if err != nil {
		return model.UserItem{}, err
	}
	s.log.Info("backlog entry updated", zap.String("user_id", userID), zap.String("item_id", itemID))
	s.emit(ctx, queue.ActionUpdated, ui, s.titleOf(ctx, itemID))
	return ui, nil
}

// Remove takes the item off the user's backlog and returns the removed
// entry.
func (s *UserItemsService) Remove(ctx context.Context, userID, itemID string) (model.UserItem, error) {
	ui, err := s.userItems.DeleteByUserAndItem(ctx, userID, itemID)
	if err != nil {
		return model.UserItem{}, err
	}
	s.log.Info("item removed from backlog", zap.String("user_id", userID), zap.String("item_id", itemID))
	s.emit(ctx, queue.ActionRemoved, ui, s.titleOf(ctx, itemID))
	return ui, nil
}

func (s *UserItemsService) Stats(ctx context.Context, userID string) (model.BacklogStats, error) {
	return s.userItems.StatsByUser(ctx, userID)
}

func (s *UserItemsService) titleOf(ctx context.Context, itemID string) string {
	if it, err := s.items.GetByID(ctx, itemID); err == nil {
		return it.Title
	}
	return ""
}
