// Package internal contains core application wiring
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"visitlens/internal/analytics"
	"visitlens/internal/config"
	"visitlens/internal/database"
	"visitlens/internal/events"
	"visitlens/internal/logging"
	"visitlens/internal/pkg/resultcache"
)

// Application bundles the wired components behind a start/stop surface.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.DBManager
	Cache     *resultcache.Cache // nil when caching is disabled
	Store     *events.Store
	Service   *analytics.Service

	server *fiber.App
	errCh  chan error
}

// NewApp creates an application instance with the default configuration.
func NewApp() (*Application, error) {
	return NewAppWithConfig(config.GetConfig())
}

// NewAppWithConfig wires the full stack against the provided config.
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := logging.NewLogger(cfg)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db := dbManager.GetConnection()

	var cache *resultcache.Cache
	if cfg.CacheEnabled() {
		var err error
		cache, err = resultcache.New(cfg.CacheMaxEntries, time.Duration(cfg.CacheTTLSeconds)*time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize result cache: %w", err)
		}
	}

	store := events.NewStore(db, cfg.PrivacyMode, logger)

	opts := []analytics.Option{}
	if cache != nil {
		opts = append(opts, analytics.WithCache(cache))
	}
	service := analytics.NewService(db, store, cfg, logger, opts...)

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		Cache:     cache,
		Store:     store,
		Service:   service,
		errCh:     make(chan error, 1),
	}
	app.server = app.buildServer()
	return app, nil
}

func (a *Application) buildServer() *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:               a.Config.AppName,
		DisableStartupMessage: a.Config.IsTest(),
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	MountRoutes(server, a)
	return server
}

// Server exposes the fiber app, used by tests to drive requests directly.
func (a *Application) Server() *fiber.App {
	return a.server
}

// StartAsync begins listening without blocking. Listen errors surface on
// the channel returned by Err.
func (a *Application) StartAsync() {
	addr := ":" + a.Config.AppPort
	a.Logger.Info("Starting server", slog.String("addr", addr))
	go func() {
		if err := a.server.Listen(addr); err != nil {
			a.errCh <- err
		}
	}()
}

// Err reports a fatal listen error, if any.
func (a *Application) Err() <-chan error {
	return a.errCh
}

// Shutdown stops the HTTP server and releases the cache and database.
func (a *Application) Shutdown(ctx context.Context) error {
	if err := a.server.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
	if err := a.DBManager.CheckpointWAL("FULL"); err != nil {
		a.Logger.Warn("Failed to checkpoint WAL on shutdown", slog.Any("error", err))
	}
	return nil
}
