package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/media-backlog/internal/service"
)

// UsersHandler exposes user management endpoints. Routes are guarded:
// reads and writes on /users/:id require the caller to be the user
// themselves or an admin; listing and creating arbitrary users is
// admin-only (self-registration goes through /auth/register).
type UsersHandler struct {
	Users *service.UsersService
}

func NewUsersHandler(users *service.UsersService) *UsersHandler {
	return &UsersHandler{Users: users}
}

type createUserReq struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type updateUserReq struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Password    string  `json:"password"`
	NewPassword string  `json:"newPassword"`
}

func (h *UsersHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, service.CreateUserParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, toUserView(u))
}

func (h *UsersHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	page, err := h.Users.List(ctx, listQuery(c), c.QueryParam("search"))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, mapPage(page, toUserView))
}

func (h *UsersHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Get(ctx, c.Param("id"))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, toUserView(u))
}

func (h *UsersHandler) Update(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Update(ctx, c.Param("id"), service.UpdateUserParams{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, toUserView(u))
}

func (h *UsersHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, c.Param("id")); err != nil {
		return failErr(c, err)
	}
	return noContent(c)
}
