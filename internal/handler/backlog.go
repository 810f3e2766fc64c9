package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/media-backlog/internal/middleware"
	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
	"github.com/iliyamo/media-backlog/internal/service"
)

// BacklogHandler serves the authenticated user's backlog. Every route
// operates on the caller's own rows; the user id comes from the
// session, never from the URL.
type BacklogHandler struct {
	UserItems *service.UserItemsService
}

func NewBacklogHandler(userItems *service.UserItemsService) *BacklogHandler {
	return &BacklogHandler{UserItems: userItems}
}

type addBacklogReq struct {
	ItemID string `json:"itemId"`
	Status string `json:"status"`
	Rating *int   `json:"rating"`
	Order  *int   `json:"order"`
}

type updateBacklogReq struct {
	Status *string `json:"status"`
	Rating *int    `json:"rating"`
	Order  *int    `json:"order"`
}

func (h *BacklogHandler) Add(c echo.Context) error {
	var req addBacklogReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ui, err := h.UserItems.Add(ctx, middleware.UserID(c), service.AddParams{
		ItemID: req.ItemID,
		Status: model.BacklogStatus(req.Status),
		Rating: req.Rating,
		Order:  req.Order,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, toUserItemView(ui))
}

func (h *BacklogHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	f := repository.BacklogFilter{Status: model.BacklogStatus(c.QueryParam("status"))}
	page, err := h.UserItems.List(ctx, middleware.UserID(c), listQuery(c), f)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, mapPage(page, toUserItemView))
}

func (h *BacklogHandler) Update(c echo.Context) error {
	var req updateBacklogReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	upd := repository.UserItemUpdate{Rating: req.Rating, Order: req.Order}
	if req.Status != nil {
		st := model.BacklogStatus(*req.Status)
		upd.Status = &st
	}
	ui, err := h.UserItems.Update(ctx, middleware.UserID(c), c.Param("itemId"), upd)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, toUserItemView(ui))
}

func (h *BacklogHandler) Remove(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.UserItems.Remove(ctx, middleware.UserID(c), c.Param("itemId")); err != nil {
		return failErr(c, err)
	}
	return noContent(c)
}

func (h *BacklogHandler) Stats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	stats, err := h.UserItems.Stats(ctx, middleware.UserID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, stats)
}
