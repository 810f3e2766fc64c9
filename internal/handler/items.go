package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/media-backlog/internal/middleware"
	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
	"github.com/iliyamo/media-backlog/internal/service"
)

// ItemsHandler exposes the item catalogue. Listing and reading single
// public items works unauthenticated; mutations require the session
// guard and ownership (or the admin role) is enforced by the service.
type ItemsHandler struct {
	Items *service.ItemsService
}

func NewItemsHandler(items *service.ItemsService) *ItemsHandler {
	return &ItemsHandler{Items: items}
}

type createItemReq struct {
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	Description *string `json:"description"`
	Note        *string `json:"note"`
	ImageURL    *string `json:"image_url"`
	IsPublic    bool    `json:"is_public"`
}

type updateItemReq struct {
	Title       *string `json:"title"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	Note        *string `json:"note"`
	ImageURL    *string `json:"image_url"`
	IsPublic    *bool   `json:"is_public"`
}

func requester(c echo.Context) service.Requester {
	return service.Requester{
		ID:    middleware.UserID(c),
		Admin: middleware.HasRole(c, model.RoleAdmin),
	}
}

func (h *ItemsHandler) Create(c echo.Context) error {
	var req createItemReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	it, err := h.Items.Create(ctx, middleware.UserID(c), service.CreateItemParams{
		Title:       req.Title,
		Type:        model.ItemType(req.Type),
		Description: req.Description,
		Note:        req.Note,
		ImageURL:    req.ImageURL,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, toItemView(it))
}

// List pages through visible items. Filters: ?search= (title prefix,
// case-insensitive), ?type=, ?owner= (user id).
func (h *ItemsHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	page, err := h.Items.List(ctx, listQuery(c), repository.ItemFilter{
		Search:  c.QueryParam("search"),
		Type:    model.ItemType(c.QueryParam("type")),
		OwnerID: c.QueryParam("owner"),
	}, requester(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, mapPage(page, toItemView))
}

func (h *ItemsHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	it, err := h.Items.Get(ctx, c.Param("id"), requester(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, toItemView(it))
}

// GetWithGenres returns the item together with its attached genres.
func (h *ItemsHandler) GetWithGenres(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	iwg, err := h.Items.GetWithGenres(ctx, c.Param("id"), requester(c))
	if err != nil {
		return failErr(c, err)
	}
	genres := make([]genreView, len(iwg.Genres))
	for i, g := range iwg.Genres {
		genres[i] = toGenreView(g)
	}
	return ok(c, http.StatusOK, echo.Map{
		"item":   toItemView(iwg.Item),
		"genres": genres,
	})
}

func (h *ItemsHandler) Update(c echo.Context) error {
	var req updateItemReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	var typ *model.ItemType
	if req.Type != nil {
		t := model.ItemType(*req.Type)
		typ = &t
	}
	it, err := h.Items.Update(ctx, c.Param("id"), service.UpdateItemParams{
		Title:       req.Title,
		Type:        typ,
		Description: req.Description,
		Note:        req.Note,
		ImageURL:    req.ImageURL,
		IsPublic:    req.IsPublic,
	}, requester(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, toItemView(it))
}

func (h *ItemsHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Items.Delete(ctx, c.Param("id"), requester(c)); err != nil {
		return failErr(c, err)
	}
	return noContent(c)
}
