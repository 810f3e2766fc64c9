package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/media-backlog/internal/repository"
	"github.com/iliyamo/media-backlog/internal/service"
)

// ItemGenresHandler manages the item/genre links.
type ItemGenresHandler struct {
	ItemGenres *service.ItemGenresService
}

func NewItemGenresHandler(itemGenres *service.ItemGenresService) *ItemGenresHandler {
	return &ItemGenresHandler{ItemGenres: itemGenres}
}

type itemGenreReq struct {
	GenreID string `json:"genreId"`
}

func (h *ItemGenresHandler) Create(c echo.Context) error {
	var req itemGenreReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ig, err := h.ItemGenres.Create(ctx, c.Param("id"), req.GenreID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, toItemGenreView(ig))
}

func (h *ItemGenresHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	f := repository.ItemGenreFilter{ItemID: c.Param("id")}
	page, err := h.ItemGenres.List(ctx, listQuery(c), f)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, mapPage(page, toItemGenreView))
}

func (h *ItemGenresHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.ItemGenres.Delete(ctx, c.Param("id"), c.Param("genreId")); err != nil {
		return failErr(c, err)
	}
	return noContent(c)
}
