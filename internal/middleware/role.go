package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  The roles
// accepted correspond to the values stored in the token's roles claim.
// If none of the user's roles is in the allowed set, the request is
// aborted with a 403 Forbidden response.  It assumes SessionAuth has
// already run and stored the roles in the context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, r := range Roles(c) {
				if allowed[r] {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "forbidden"})
		}
	}
}

// RequireAdminOrSelf guards user-scoped routes: the caller must either
// target their own id (the :id path parameter) or carry the admin role.
func RequireAdminOrSelf(adminRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Param("id") == UserID(c) || HasRole(c, adminRole) {
				return next(c)
			}
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "forbidden"})
		}
	}
}
