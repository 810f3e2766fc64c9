package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
)

// View types shape the JSON exposed by the API. Models stay free of
// json tags; everything that leaves a handler goes through one of
// these.

type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserView(u model.User) userView {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Roles: roles,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

type itemView struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Type        model.ItemType `json:"type"`
	Description *string        `json:"description,omitempty"`
	Note        *string        `json:"note,omitempty"`
	ImageURL    *string        `json:"image_url,omitempty"`
	UserID      string         `json:"user_id"`
	IsPublic    bool           `json:"is_public"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toItemView(it model.Item) itemView {
	return itemView{ID: it.ID, Title: it.Title, Type: it.Type,
		Description: it.Description, Note: it.Note, ImageURL: it.ImageURL,
		UserID: it.UserID, IsPublic: it.IsPublic,
		CreatedAt: it.CreatedAt, UpdatedAt: it.UpdatedAt}
}

type genreView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toGenreView(g model.Genre) genreView {
	return genreView{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt}
}

type itemGenreView struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	GenreID   string    `json:"genre_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toItemGenreView(ig model.ItemGenre) itemGenreView {
	return itemGenreView{ID: ig.ID, ItemID: ig.ItemID, GenreID: ig.GenreID, CreatedAt: ig.CreatedAt}
}

type userItemView struct {
	ID      string              `json:"id"`
	UserID  string              `json:"user_id"`
	ItemID  string              `json:"item_id"`
	Status  model.BacklogStatus `json:"status"`
	Rating  *int                `json:"rating,omitempty"`
	Order   *int                `json:"order,omitempty"`
	AddedAt time.Time           `json:"added_at"`
}

func toUserItemView(ui model.UserItem) userItemView {
	return userItemView{ID: ui.ID, UserID: ui.UserID, ItemID: ui.ItemID,
		Status: ui.Status, Rating: ui.Rating, Order: ui.Order, AddedAt: ui.AddedAt}
}

// mapPage converts a page of models into a page of views, keeping the
// pagination metadata intact.
func mapPage[T, V any](p repository.Page[T], f func(T) V) repository.Page[V] {
	out := make([]V, len(p.Data))
	for i, d := range p.Data {
		out[i] = f(d)
	}
	return repository.Page[V]{
		Data:        out,
		TotalItems:  p.TotalItems,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
		IsFirstPage: p.IsFirstPage,
		IsLastPage:  p.IsLastPage,
	}
}

// listQuery parses the shared limit/page query parameters. Absent or
// malformed values fall back to the defaults via Normalize.
func listQuery(c echo.Context) repository.ListQuery {
	var q repository.ListQuery
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		q.Limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		q.Page = v
	}
	return q.Normalize()
}
