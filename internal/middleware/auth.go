package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming
	"time"

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/media-backlog/internal/repository"
	"github.com/iliyamo/media-backlog/internal/utils"
)

// Context keys set by SessionAuth for downstream handlers.
const (
	CtxUserID      = "user_id"
	CtxUserRoles   = "roles"
	CtxAccessToken = "access_token"
	CtxUser        = "user"
)

// SessionAuth returns an Echo middleware that gates protected routes.
// A request passes only when it carries a Bearer token that verifies
// cryptographically AND maps to a live server-side session. The token's
// self-reported expiry is not trusted on its own: a session may have
// been revoked by logout or lapsed past its deadline, so the store is
// consulted on every request.
//
// Any failure responds 401. As a side effect, a token that fails
// verification or whose session has lapsed flags that session expired
// (lazy cleanup), so later lookups short-circuit.
func SessionAuth(secret string, sessions repository.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Read the Authorization header. A valid header is exactly
			// "Bearer <token>"; anything else is rejected before any
			// session lookup happens.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "missing bearer token"})
			}

			ctx := c.Request().Context()

			payload, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				// bad signature, malformed claims, or the token's own
				// exp has passed; flag the session if one is bound to
				// this token
				_ = sessions.ExpireByToken(ctx, raw)
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "session has expired"})
			}

			sess, err := sessions.GetByUserID(ctx, payload.Sub)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "session has expired"})
			}
			if sess.IsExpired || !time.Now().UTC().Before(sess.ExpiredAt) {
				_ = sessions.ExpireByToken(ctx, raw)
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "session has expired"})
			}

			// Attach the decoded payload for downstream handlers.
			c.Set(CtxUserID, payload.Sub)
			c.Set(CtxUserRoles, payload.Roles)
			c.Set(CtxAccessToken, raw)
			c.Set(CtxUser, payload)
			return next(c)
		}
	}
}

// UserID returns the authenticated user's id from the context, or ""
// when the route is not guarded.
func UserID(c echo.Context) string {
	if v, ok := c.Get(CtxUserID).(string); ok {
		return v
	}
	return ""
}

// Roles returns the authenticated user's role names.
func Roles(c echo.Context) []string {
	if v, ok := c.Get(CtxUserRoles).([]string); ok {
		return v
	}
	return nil
}

// HasRole reports whether the authenticated user carries the role.
func HasRole(c echo.Context, role string) bool {
	for _, r := range Roles(c) {
		if r == role {
			return true
		}
	}
	return false
}

// AccessToken returns the raw bearer token the request authenticated with.
func AccessToken(c echo.Context) string {
	if v, ok := c.Get(CtxAccessToken).(string); ok {
		return v
	}
	return ""
}
