package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/media-backlog/internal/repository"
	"github.com/iliyamo/media-backlog/internal/service"
)

// response is the uniform envelope for every endpoint: {success, data}
// on the happy path, {success:false, error} on failure. Paginated list
// endpoints place the pagination envelope in data.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, response{Success: true, Data: data})
}

func noContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, response{Success: false, Error: msg})
}

// failErr maps the error taxonomy 1:1 onto HTTP status codes:
// Unauthenticated 401, Forbidden 403, NotFound 404, Conflict 409,
// InvalidArgument 400 and everything else 500. Unknown errors are not
// echoed to the client.
func failErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return fail(c, http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, service.ErrForbidden):
		return fail(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrEmailExists):
		return fail(c, http.StatusConflict, "email already exists")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrInvalidArgument):
		return fail(c, http.StatusBadRequest, err.Error())
	default:
		return fail(c, http.StatusInternalServerError, "internal error")
	}
}
