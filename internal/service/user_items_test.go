package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/queue"
	"github.com/iliyamo/media-backlog/internal/repository"
)

func newBacklogFixture(t *testing.T) (*UserItemsService, model.Item, *[]queue.BacklogActivityEvent) {
	t.Helper()
	stores := repository.NewMemoryStores()
	svc := NewUserItemsService(stores.UserItems, stores.Items, zap.NewNop())

	var events []queue.BacklogActivityEvent
	svc.Publish = func(_ context.Context, ev queue.BacklogActivityEvent) error {
		events = append(events, ev)
		return nil
	}

	it, err := stores.Items.Create(context.Background(), model.Item{
		Title: "Dune", Type: model.ItemTypeBook, UserID: "owner", IsPublic: true,
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return svc, it, &events
}

func TestBacklogAdd(t *testing.T) {
	svc, it, events := newBacklogFixture(t)
	ctx := context.Background()

	ui, err := svc.Add(ctx, "reader", AddParams{ItemID: it.ID})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if ui.Status != model.StatusPending {
		t.Fatalf("status = %q, want default pending", ui.Status)
	}
	if ui.AddedAt.IsZero() {
		t.Fatal("AddedAt not set")
	}

	if len(*events) != 1 {
		t.Fatalf("published %d events, want 1", len(*events))
	}
	ev := (*events)[0]
	if ev.Action != queue.ActionAdded || ev.ItemTitle != "Dune" || ev.UserID != "reader" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestBacklogAddRejections(t *testing.T) {
	svc, it, events := newBacklogFixture(t)
	ctx := context.Background()

	bad := 11
	cases := []struct {
		name string
		p    AddParams
		want error
	}{
		{"unknown item", AddParams{ItemID: "nope"}, repository.ErrNotFound},
		{"unknown status", AddParams{ItemID: it.ID, Status: "someday"}, ErrInvalidArgument},
		{"rating out of range", AddParams{ItemID: it.ID, Rating: &bad}, ErrInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Add(ctx, "reader", tc.p); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	// same item twice is a conflict
	if _, err := svc.Add(ctx, "reader", AddParams{ItemID: it.ID}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := svc.Add(ctx, "reader", AddParams{ItemID: it.ID}); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("duplicate add: got %v, want ErrConflict", err)
	}

	// rejected operations published nothing beyond the one success
	if len(*events) != 1 {
		t.Fatalf("published %d events, want 1", len(*events))
	}
}

func TestBacklogUpdate(t *testing.T) {
	svc, it, events := newBacklogFixture(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "reader", AddParams{ItemID: it.ID}); err != nil {
		t.Fatalf("add: %v", err)
	}

	done := model.StatusCompleted
	nine := 9
	ui, err := svc.Update(ctx, "reader", it.ID, repository.UserItemUpdate{Status: &done, Rating: &nine})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if ui.Status != model.StatusCompleted || ui.Rating == nil || *ui.Rating != 9 {
		t.Fatalf("after update: %+v", ui)
	}

	bad := model.BacklogStatus("paused")
	if _, err := svc.Update(ctx, "reader", it.ID, repository.UserItemUpdate{Status: &bad}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bad status: got %v, want ErrInvalidArgument", err)
	}
	zero := 0
	if _, err := svc.Update(ctx, "reader", it.ID, repository.UserItemUpdate{Rating: &zero}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("zero rating: got %v, want ErrInvalidArgument", err)
	}
	if _, err := svc.Update(ctx, "reader", "missing", repository.UserItemUpdate{Status: &done}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing entry: got %v, want ErrNotFound", err)
	}

	if len(*events) != 2 || (*events)[1].Action != queue.ActionUpdated {
		t.Fatalf("events = %+v", *events)
	}
}

func TestBacklogRemove(t *testing.T) {
	svc, it, events := newBacklogFixture(t)
	ctx := context.Background()

	svc.Add(ctx, "reader", AddParams{ItemID: it.ID})

	removed, err := svc.Remove(ctx, "reader", it.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.ItemID != it.ID {
		t.Fatalf("removed = %+v", removed)
	}
	if _, err := svc.Remove(ctx, "reader", it.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("double remove: got %v, want ErrNotFound", err)
	}
	if len(*events) != 2 || (*events)[1].Action != queue.ActionRemoved {
		t.Fatalf("events = %+v", *events)
	}
}

func TestBacklogPublishFailureDoesNotFailRequest(t *testing.T) {
	svc, it, _ := newBacklogFixture(t)
	svc.Publish = func(context.Context, queue.BacklogActivityEvent) error {
		return errors.New("broker down")
	}
	if _, err := svc.Add(context.Background(), "reader", AddParams{ItemID: it.ID}); err != nil {
		t.Fatalf("add with failing publisher: %v", err)
	}
}

func TestBacklogStats(t *testing.T) {
	stores := repository.NewMemoryStores()
	svc := NewUserItemsService(stores.UserItems, stores.Items, zap.NewNop())
	ctx := context.Background()

	seed := []model.BacklogStatus{
		model.StatusPending, model.StatusPending,
		model.StatusInProgress,
		model.StatusCompleted, model.StatusCompleted, model.StatusCompleted,
	}
	for i, st := range seed {
		it, _ := stores.Items.Create(ctx, model.Item{Title: "x", Type: model.ItemTypeGame, UserID: "owner", IsPublic: true})
		if _, err := svc.Add(ctx, "reader", AddParams{ItemID: it.ID, Status: st}); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	stats, err := svc.Stats(ctx, "reader")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := model.BacklogStats{Total: 6, Pending: 2, InProgress: 1, Completed: 3}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}

	empty, _ := svc.Stats(ctx, "nobody")
	if empty != (model.BacklogStats{}) {
		t.Fatalf("empty stats = %+v", empty)
	}
}

func TestBacklogListStatusFilter(t *testing.T) {
	svc, it, _ := newBacklogFixture(t)
	ctx := context.Background()

	svc.Add(ctx, "reader", AddParams{ItemID: it.ID, Status: model.StatusInProgress})

	page, err := svc.List(ctx, "reader", repository.ListQuery{}, repository.BacklogFilter{Status: model.StatusInProgress})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalItems != 1 {
		t.Fatalf("TotalItems = %d, want 1", page.TotalItems)
	}

	if _, err := svc.List(ctx, "reader", repository.ListQuery{}, repository.BacklogFilter{Status: "bogus"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bogus status filter: got %v, want ErrInvalidArgument", err)
	}
}
