package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/media-backlog/internal/config"
	"github.com/iliyamo/media-backlog/internal/database"
	"github.com/iliyamo/media-backlog/internal/handler"
	"github.com/iliyamo/media-backlog/internal/queue"
	"github.com/iliyamo/media-backlog/internal/repository"
	"github.com/iliyamo/media-backlog/internal/router"
	"github.com/iliyamo/media-backlog/internal/service"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	stores, err := openStores(cfg)
	if err != nil {
		logger.Fatal("storage init failed", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	authSvc := service.NewAuthService(stores.Users, stores.Sessions, cfg.JWTSecret, cfg.AccessTTLMin, logger)
	usersSvc := service.NewUsersService(stores.Users, cfg.BcryptCost, logger)
	itemsSvc := service.NewItemsService(stores.Items, stores.ItemGenres, logger)
	genresSvc := service.NewGenresService(stores.Genres, logger)
	itemGenresSvc := service.NewItemGenresService(stores.Items, stores.Genres, stores.ItemGenres, logger)
	userItemsSvc := service.NewUserItemsService(stores.UserItems, stores.Items, logger)
	userItemsSvc.Publish = queue.PublishBacklogActivity

	// Background consumer for backlog activity events. Runs its own
	// reconnect loop; a missing broker only disables the activity log.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			logger.Warn("activity consumer stopped", zap.Error(err))
		}
	}()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, cache and rate limiting disabled")
	}

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, usersSvc),
		Users:      handler.NewUsersHandler(usersSvc),
		Items:      handler.NewItemsHandler(itemsSvc),
		Genres:     handler.NewGenresHandler(genresSvc),
		ItemGenres: handler.NewItemGenresHandler(itemGenresSvc),
		Backlog:    handler.NewBacklogHandler(userItemsSvc),
	}, cfg.JWTSecret, stores.Sessions, rdb)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))

	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// openStores picks the storage backend from STORE_DRIVER. The mysql
// driver opens a pooled connection and runs the idempotent schema
// migration; the memory driver backs everything with in-process maps.
func openStores(cfg config.Config) (*repository.Stores, error) {
	if cfg.StoreDriver == "memory" {
		return repository.NewMemoryStores(), nil
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		return nil, err
	}
	return repository.NewMySQLStores(db), nil
}
