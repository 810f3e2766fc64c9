package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/media-backlog/internal/config"
	"github.com/iliyamo/media-backlog/internal/handler"
	"github.com/iliyamo/media-backlog/internal/middleware"
	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UsersHandler
	Items      *handler.ItemsHandler
	Genres     *handler.GenresHandler
	ItemGenres *handler.ItemGenresHandler
	Backlog    *handler.BacklogHandler
}

// RegisterRoutes wires the full API onto the Echo instance.
//
// Three tiers of routes exist: the unauthenticated surface (health,
// register/login and public browsing of items and genres), the
// session-guarded surface under /v1, and admin-only mutations inside
// it. Read endpoints on the public surface go through the Redis
// response cache; the auth endpoints go through the token-bucket rate
// limiter. Both degrade to pass-through when Redis is absent.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, sessions repository.SessionStore, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limited := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Register and login stay unauthenticated but rate-limited; brute
	// force on /login is the main concern here.
	authGroup := e.Group("/v1/auth", limited)
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)

	// Public browsing. Only public items come back on these routes;
	// the guarded /v1/items view below also shows the caller's own
	// hidden items.
	e.GET("/v1/items", h.Items.List, cached)
	e.GET("/v1/items/:id", h.Items.Get, cached)
	e.GET("/v1/items/:id/genres", h.ItemGenres.List, cached)
	e.GET("/v1/genres", h.Genres.List, cached)
	e.GET("/v1/genres/:id", h.Genres.Get, cached)

	guarded := e.Group("/v1")
	guarded.Use(middleware.SessionAuth(jwtSecret, sessions))

	guarded.POST("/auth/logout", h.Auth.Logout)
	guarded.GET("/auth/profile", h.Auth.Profile)

	guarded.POST("/items", h.Items.Create)
	guarded.GET("/items/:id/full", h.Items.GetWithGenres)
	guarded.PATCH("/items/:id", h.Items.Update)
	guarded.DELETE("/items/:id", h.Items.Delete)

	guarded.POST("/items/:id/genres", h.ItemGenres.Create)
	guarded.DELETE("/items/:id/genres/:genreId", h.ItemGenres.Delete)

	admin := middleware.RequireRole(model.RoleAdmin)
	guarded.POST("/genres", h.Genres.Create, admin)
	guarded.PATCH("/genres/:id", h.Genres.Update, admin)
	guarded.DELETE("/genres/:id", h.Genres.Delete, admin)

	adminOrSelf := middleware.RequireAdminOrSelf(model.RoleAdmin)
	guarded.POST("/users", h.Users.Create, admin)
	guarded.GET("/users", h.Users.List, admin)
	guarded.GET("/users/:id", h.Users.Get, adminOrSelf)
	guarded.PATCH("/users/:id", h.Users.Update, adminOrSelf)
	guarded.DELETE("/users/:id", h.Users.Delete, adminOrSelf)

	guarded.POST("/backlog", h.Backlog.Add)
	guarded.GET("/backlog", h.Backlog.List)
	guarded.GET("/backlog/stats", h.Backlog.Stats)
	guarded.PATCH("/backlog/:itemId", h.Backlog.Update)
	guarded.DELETE("/backlog/:itemId", h.Backlog.Remove)
}
