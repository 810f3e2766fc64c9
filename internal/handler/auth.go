package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/media-backlog/internal/middleware"
	"github.com/iliyamo/media-backlog/internal/service"
	"github.com/iliyamo/media-backlog/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth  *service.AuthService
	Users *service.UsersService
}

func NewAuthHandler(auth *service.AuthService, users *service.UsersService) *AuthHandler {
	return &AuthHandler{Auth: auth, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type tokenResp struct {
	AccessToken string `json:"access_token"`
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// Register creates an account. Unlike login it does not open a session;
// the client signs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email/password required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, service.CreateUserParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, toUserView(u))
}

// Login verifies credentials and returns the bearer token. While the
// user still holds a live session the same token comes back.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email/password required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	token, err := h.Auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusCreated, tokenResp{AccessToken: token})
}

// Logout expires the session bound to the presented bearer token.
// The route sits behind the session guard, so the token is known valid
// here; sign-out then revokes it server-side.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.SignOut(ctx, middleware.AccessToken(c)); err != nil {
		return failErr(c, err)
	}
	return noContent(c)
}

// Profile returns the token payload the guard attached to the request.
func (h *AuthHandler) Profile(c echo.Context) error {
	p, _ := c.Get(middleware.CtxUser).(utils.TokenPayload)
	roles := p.Roles
	if roles == nil {
		roles = []string{}
	}
	return ok(c, http.StatusOK, echo.Map{
		"sub":   p.Sub,
		"name":  p.Name,
		"email": p.Email,
		"roles": roles,
	})
}
