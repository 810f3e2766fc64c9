package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/media-backlog/internal/service"
)

// GenresHandler exposes genre management. Reads are public; mutations
// are admin-only (enforced by route middleware).
type GenresHandler struct {
	Genres *service.GenresService
}

func NewGenresHandler(genres *service.GenresService) *GenresHandler {
	return &GenresHandler{Genres: genres}
}

type genreReq struct {
	Name string `json:"name"`
}

func (h *GenresHandler) Create(c echo.Context) error {
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	g, err := h.Genres.Create(ctx, req.Name)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, toGenreView(g))
}

func (h *GenresHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	page, err := h.Genres.List(ctx, listQuery(c), c.QueryParam("search"))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, mapPage(page, toGenreView))
}

func (h *GenresHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	g, err := h.Genres.Get(ctx, c.Param("id"))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, toGenreView(g))
}

func (h *GenresHandler) Update(c echo.Context) error {
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	g, err := h.Genres.Update(ctx, c.Param("id"), req.Name)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, toGenreView(g))
}

func (h *GenresHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Genres.Delete(ctx, c.Param("id")); err != nil {
		return failErr(c, err)
	}
	return noContent(c)
}
