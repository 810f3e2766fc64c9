package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/media-backlog/internal/handler"
	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
	"github.com/iliyamo/media-backlog/internal/router"
	"github.com/iliyamo/media-backlog/internal/service"
)

const apiSecret = "api-test-secret"

// newAPI assembles the full stack over the in-memory stores, exactly as
// main does minus Redis and the broker.
func newAPI(t *testing.T) (*echo.Echo, *service.UsersService) {
	t.Helper()
	stores := repository.NewMemoryStores()
	log := zap.NewNop()

	authSvc := service.NewAuthService(stores.Users, stores.Sessions, apiSecret, 10, log)
	usersSvc := service.NewUsersService(stores.Users, 4, log)
	itemsSvc := service.NewItemsService(stores.Items, stores.ItemGenres, log)
	genresSvc := service.NewGenresService(stores.Genres, log)
	itemGenresSvc := service.NewItemGenresService(stores.Items, stores.Genres, stores.ItemGenres, log)
	userItemsSvc := service.NewUserItemsService(stores.UserItems, stores.Items, log)

	e := echo.New()
	router.RegisterRoutes(e, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, usersSvc),
		Users:      handler.NewUsersHandler(usersSvc),
		Items:      handler.NewItemsHandler(itemsSvc),
		Genres:     handler.NewGenresHandler(genresSvc),
		ItemGenres: handler.NewItemGenresHandler(itemGenresSvc),
		Backlog:    handler.NewBacklogHandler(userItemsSvc),
	}, apiSecret, stores.Sessions, nil)
	return e, usersSvc
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func call(t *testing.T, e *echo.Echo, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var rd *strings.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = strings.NewReader(string(bs))
	} else {
		rd = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: bad envelope %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

func register(t *testing.T, e *echo.Echo, name, email string) {
	t.Helper()
	code, env := call(t, e, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "longenough",
	})
	if code != http.StatusCreated || !env.Success {
		t.Fatalf("register %s: status %d, error %q", email, code, env.Error)
	}
}

func login(t *testing.T, e *echo.Echo, email string) string {
	t.Helper()
	code, env := call(t, e, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": email, "password": "longenough",
	})
	if code != http.StatusCreated {
		t.Fatalf("login %s: status %d, error %q", email, code, env.Error)
	}
	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.AccessToken == "" {
		t.Fatalf("login %s: no token in %s", email, env.Data)
	}
	return data.AccessToken
}

func TestAuthFlow(t *testing.T) {
	e, _ := newAPI(t)

	register(t, e, "alice", "alice@example.com")
	tok := login(t, e, "alice@example.com")

	code, env := call(t, e, http.MethodGet, "/v1/auth/profile", tok, nil)
	if code != http.StatusOK {
		t.Fatalf("profile: status %d", code)
	}
	var profile struct {
		Sub   string   `json:"sub"`
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	}
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("profile body: %v", err)
	}
	if profile.Email != "alice@example.com" || len(profile.Roles) != 1 || profile.Roles[0] != model.RoleUser {
		t.Fatalf("profile = %+v", profile)
	}

	if code, _ := call(t, e, http.MethodPost, "/v1/auth/logout", tok, nil); code != http.StatusNoContent {
		t.Fatalf("logout: status %d", code)
	}
	// the token is dead after logout
	if code, _ := call(t, e, http.MethodGet, "/v1/auth/profile", tok, nil); code != http.StatusUnauthorized {
		t.Fatalf("profile after logout: status %d, want 401", code)
	}
}

func TestAuthRejections(t *testing.T) {
	e, _ := newAPI(t)
	register(t, e, "alice", "alice@example.com")

	code, _ := call(t, e, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d, want 401", code)
	}

	code, _ = call(t, e, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name": "dupe", "email": "alice@example.com", "password": "longenough",
	})
	if code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d, want 409", code)
	}

	if code, _ := call(t, e, http.MethodGet, "/v1/auth/profile", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", code)
	}
}

func TestItemLifecycle(t *testing.T) {
	e, _ := newAPI(t)
	register(t, e, "alice", "alice@example.com")
	tok := login(t, e, "alice@example.com")

	code, env := call(t, e, http.MethodPost, "/v1/items", tok, map[string]any{
		"title": "Disco Elysium", "type": "game", "is_public": true,
	})
	if code != http.StatusCreated {
		t.Fatalf("create item: status %d, error %q", code, env.Error)
	}
	var created struct {
		ID string `json:"id"`
	}
	json.Unmarshal(env.Data, &created)

	// private item, visible to its owner only
	code, env = call(t, e, http.MethodPost, "/v1/items", tok, map[string]any{
		"title": "Guilty Pleasure", "type": "serie",
	})
	if code != http.StatusCreated {
		t.Fatalf("create private item: status %d", code)
	}
	var private struct {
		ID string `json:"id"`
	}
	json.Unmarshal(env.Data, &private)

	// anonymous list sees only the public item
	code, env = call(t, e, http.MethodGet, "/v1/items", "", nil)
	if code != http.StatusOK {
		t.Fatalf("public list: status %d", code)
	}
	var page struct {
		Data       []json.RawMessage `json:"data"`
		TotalItems int64             `json:"totalItems"`
	}
	json.Unmarshal(env.Data, &page)
	if page.TotalItems != 1 {
		t.Fatalf("public list TotalItems = %d, want 1", page.TotalItems)
	}

	if code, _ := call(t, e, http.MethodGet, "/v1/items/"+private.ID, "", nil); code != http.StatusNotFound {
		t.Fatalf("anonymous read of private item: status %d, want 404", code)
	}

	code, _ = call(t, e, http.MethodPatch, "/v1/items/"+created.ID, tok, map[string]any{"title": "Disco Elysium: Final Cut"})
	if code != http.StatusOK {
		t.Fatalf("update: status %d", code)
	}

	// another user cannot touch it
	register(t, e, "bob", "bob@example.com")
	bobTok := login(t, e, "bob@example.com")
	if code, _ := call(t, e, http.MethodPatch, "/v1/items/"+created.ID, bobTok, map[string]any{"title": "hijack"}); code != http.StatusForbidden {
		t.Fatalf("foreign update: status %d, want 403", code)
	}
	if code, _ := call(t, e, http.MethodDelete, "/v1/items/"+created.ID, bobTok, nil); code != http.StatusForbidden {
		t.Fatalf("foreign delete: status %d, want 403", code)
	}

	if code, _ := call(t, e, http.MethodDelete, "/v1/items/"+created.ID, tok, nil); code != http.StatusNoContent {
		t.Fatalf("owner delete: status %d, want 204", code)
	}
}

func TestGenreRoutesRequireAdmin(t *testing.T) {
	e, usersSvc := newAPI(t)

	register(t, e, "alice", "alice@example.com")
	userTok := login(t, e, "alice@example.com")

	if _, err := usersSvc.Create(context.Background(), service.CreateUserParams{
		Name: "root", Email: "root@example.com", Password: "longenough",
		Roles: []string{model.RoleAdmin},
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	adminTok := login(t, e, "root@example.com")

	if code, _ := call(t, e, http.MethodPost, "/v1/genres", userTok, map[string]string{"name": "horror"}); code != http.StatusForbidden {
		t.Fatalf("user create genre: status %d, want 403", code)
	}
	code, env := call(t, e, http.MethodPost, "/v1/genres", adminTok, map[string]string{"name": "horror"})
	if code != http.StatusCreated {
		t.Fatalf("admin create genre: status %d, error %q", code, env.Error)
	}
	var g struct {
		ID string `json:"id"`
	}
	json.Unmarshal(env.Data, &g)

	// reads stay public
	if code, _ := call(t, e, http.MethodGet, "/v1/genres", "", nil); code != http.StatusOK {
		t.Fatalf("public genre list: status %d", code)
	}
	if code, _ := call(t, e, http.MethodGet, "/v1/genres/"+g.ID, "", nil); code != http.StatusOK {
		t.Fatalf("public genre get: status %d", code)
	}

	if code, _ := call(t, e, http.MethodPost, "/v1/genres", adminTok, map[string]string{"name": "HORROR"}); code != http.StatusConflict {
		t.Fatalf("duplicate genre: status %d, want 409", code)
	}
}

func TestBacklogFlow(t *testing.T) {
	e, _ := newAPI(t)
	register(t, e, "alice", "alice@example.com")
	tok := login(t, e, "alice@example.com")

	var itemIDs []string
	for i, status := range []string{"pending", "in_progress", "completed"} {
		code, env := call(t, e, http.MethodPost, "/v1/items", tok, map[string]any{
			"title": fmt.Sprintf("item-%d", i), "type": "book", "is_public": true,
		})
		if code != http.StatusCreated {
			t.Fatalf("create item %d: status %d", i, code)
		}
		var it struct {
			ID string `json:"id"`
		}
		json.Unmarshal(env.Data, &it)
		itemIDs = append(itemIDs, it.ID)

		code, env = call(t, e, http.MethodPost, "/v1/backlog", tok, map[string]any{
			"itemId": it.ID, "status": status,
		})
		if code != http.StatusCreated {
			t.Fatalf("backlog add %d: status %d, error %q", i, code, env.Error)
		}
	}

	// duplicate add conflicts
	if code, _ := call(t, e, http.MethodPost, "/v1/backlog", tok, map[string]any{"itemId": itemIDs[0]}); code != http.StatusConflict {
		t.Fatalf("duplicate backlog add: status %d, want 409", code)
	}

	code, env := call(t, e, http.MethodPatch, "/v1/backlog/"+itemIDs[0], tok, map[string]any{
		"status": "completed", "rating": 8,
	})
	if code != http.StatusOK {
		t.Fatalf("backlog update: status %d, error %q", code, env.Error)
	}

	code, env = call(t, e, http.MethodGet, "/v1/backlog/stats", tok, nil)
	if code != http.StatusOK {
		t.Fatalf("stats: status %d", code)
	}
	var stats model.BacklogStats
	json.Unmarshal(env.Data, &stats)
	want := model.BacklogStats{Total: 3, Pending: 0, InProgress: 1, Completed: 2}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}

	if code, _ := call(t, e, http.MethodDelete, "/v1/backlog/"+itemIDs[1], tok, nil); code != http.StatusNoContent {
		t.Fatalf("backlog remove: status %d, want 204", code)
	}
	code, env = call(t, e, http.MethodGet, "/v1/backlog", tok, nil)
	if code != http.StatusOK {
		t.Fatalf("backlog list: status %d", code)
	}
	var page struct {
		TotalItems int64 `json:"totalItems"`
	}
	json.Unmarshal(env.Data, &page)
	if page.TotalItems != 2 {
		t.Fatalf("backlog TotalItems = %d, want 2", page.TotalItems)
	}

	// invalid rating bounces with 400
	if code, _ := call(t, e, http.MethodPatch, "/v1/backlog/"+itemIDs[0], tok, map[string]any{"rating": 42}); code != http.StatusBadRequest {
		t.Fatalf("bad rating: status %d, want 400", code)
	}
}

func TestUsersRoutesAdminOrSelf(t *testing.T) {
	e, _ := newAPI(t)
	register(t, e, "alice", "alice@example.com")
	register(t, e, "bob", "bob@example.com")
	aliceTok := login(t, e, "alice@example.com")

	// alice can read herself via her profile sub
	_, env := call(t, e, http.MethodGet, "/v1/auth/profile", aliceTok, nil)
	var profile struct {
		Sub string `json:"sub"`
	}
	json.Unmarshal(env.Data, &profile)

	if code, _ := call(t, e, http.MethodGet, "/v1/users/"+profile.Sub, aliceTok, nil); code != http.StatusOK {
		t.Fatalf("self read: status %d", code)
	}
	// but not list everyone, nor read others
	if code, _ := call(t, e, http.MethodGet, "/v1/users", aliceTok, nil); code != http.StatusForbidden {
		t.Fatalf("user list as non-admin: status %d, want 403", code)
	}
	if code, _ := call(t, e, http.MethodGet, "/v1/users/some-other-id", aliceTok, nil); code != http.StatusForbidden {
		t.Fatalf("foreign read: status %d, want 403", code)
	}
}

func TestItemGenreLinks(t *testing.T) {
	e, usersSvc := newAPI(t)

	if _, err := usersSvc.Create(context.Background(), service.CreateUserParams{
		Name: "root", Email: "root@example.com", Password: "longenough",
		Roles: []string{model.RoleAdmin},
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	tok := login(t, e, "root@example.com")

	_, env := call(t, e, http.MethodPost, "/v1/items", tok, map[string]any{"title": "x", "type": "movie", "is_public": true})
	var it struct {
		ID string `json:"id"`
	}
	json.Unmarshal(env.Data, &it)

	_, env = call(t, e, http.MethodPost, "/v1/genres", tok, map[string]string{"name": "thriller"})
	var g struct {
		ID string `json:"id"`
	}
	json.Unmarshal(env.Data, &g)

	code, env := call(t, e, http.MethodPost, "/v1/items/"+it.ID+"/genres", tok, map[string]string{"genreId": g.ID})
	if code != http.StatusCreated {
		t.Fatalf("link: status %d, error %q", code, env.Error)
	}
	if code, _ := call(t, e, http.MethodPost, "/v1/items/"+it.ID+"/genres", tok, map[string]string{"genreId": g.ID}); code != http.StatusConflict {
		t.Fatalf("duplicate link: status %d, want 409", code)
	}
	if code, _ := call(t, e, http.MethodPost, "/v1/items/"+it.ID+"/genres", tok, map[string]string{"genreId": "missing"}); code != http.StatusNotFound {
		t.Fatalf("unknown genre: status %d, want 404", code)
	}

	// anyone can browse an item's genres
	code, env = call(t, e, http.MethodGet, "/v1/items/"+it.ID+"/genres", "", nil)
	if code != http.StatusOK {
		t.Fatalf("list links: status %d", code)
	}
	var page struct {
		TotalItems int64 `json:"totalItems"`
	}
	json.Unmarshal(env.Data, &page)
	if page.TotalItems != 1 {
		t.Fatalf("links TotalItems = %d, want 1", page.TotalItems)
	}

	if code, _ := call(t, e, http.MethodDelete, "/v1/items/"+it.ID+"/genres/"+g.ID, tok, nil); code != http.StatusNoContent {
		t.Fatalf("unlink: status %d, want 204", code)
	}
}
