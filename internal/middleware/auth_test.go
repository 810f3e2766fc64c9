package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
	"github.com/iliyamo/media-backlog/internal/utils"
)

const testSecret = "test-secret"

func guardedEcho(sessions repository.SessionStore) *echo.Echo {
	e := echo.New()
	g := e.Group("/v1")
	g.Use(SessionAuth(testSecret, sessions))
	g.GET("/whoami", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"id": UserID(c), "roles": Roles(c)})
	})
	return e
}

func issueToken(t *testing.T, stores *repository.Stores, u model.User, sessionTTL time.Duration) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, u, 10)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	_, err = stores.Sessions.Create(context.Background(), model.Session{
		UserID:      u.ID,
		AccessToken: tok.Token,
		ExpiredAt:   time.Now().UTC().Add(sessionTTL),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return tok.Token
}

func do(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSessionAuthAllowsLiveSession(t *testing.T) {
	stores := repository.NewMemoryStores()
	u := model.User{ID: "u1", Name: "alice", Email: "a@x.io", Roles: []string{model.RoleUser}}
	tok := issueToken(t, stores, u, time.Hour)

	rec := do(guardedEcho(stores.Sessions), "Bearer "+tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSessionAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	stores := repository.NewMemoryStores()
	e := guardedEcho(stores.Sessions)

	for _, hdr := range []string{"", "Bearer ", "Basic abc", "token-without-scheme"} {
		if rec := do(e, hdr); rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", hdr, rec.Code)
		}
	}
}

func TestSessionAuthRejectsForgedToken(t *testing.T) {
	stores := repository.NewMemoryStores()
	u := model.User{ID: "u1", Roles: []string{model.RoleUser}}
	issueToken(t, stores, u, time.Hour)

	forged, err := utils.NewAccessToken("other-secret", u, 10)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if rec := do(guardedEcho(stores.Sessions), "Bearer "+forged.Token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSessionAuthRejectsRevokedSession(t *testing.T) {
	stores := repository.NewMemoryStores()
	u := model.User{ID: "u1", Roles: []string{model.RoleUser}}
	tok := issueToken(t, stores, u, time.Hour)

	if err := stores.Sessions.ExpireByToken(context.Background(), tok); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if rec := do(guardedEcho(stores.Sessions), "Bearer "+tok); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSessionAuthLazilyExpiresLapsedSession(t *testing.T) {
	stores := repository.NewMemoryStores()
	u := model.User{ID: "u1", Roles: []string{model.RoleUser}}
	// deadline already in the past
	tok := issueToken(t, stores, u, -time.Minute)

	if rec := do(guardedEcho(stores.Sessions), "Bearer "+tok); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	sess, err := stores.Sessions.GetByToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !sess.IsExpired {
		t.Fatal("lapsed session was not flagged expired by the guard")
	}
}

func TestRequireRole(t *testing.T) {
	stores := repository.NewMemoryStores()
	admin := model.User{ID: "a1", Roles: []string{model.RoleAdmin}}
	user := model.User{ID: "u1", Roles: []string{model.RoleUser}}
	adminTok := issueToken(t, stores, admin, time.Hour)
	userTok := issueToken(t, stores, user, time.Hour)

	e := echo.New()
	g := e.Group("/v1")
	g.Use(SessionAuth(testSecret, stores.Sessions))
	g.GET("/admin-only", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireRole(model.RoleAdmin))

	call := func(tok string) int {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := call(adminTok); code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", code)
	}
	if code := call(userTok); code != http.StatusForbidden {
		t.Fatalf("user: status = %d, want 403", code)
	}
}
