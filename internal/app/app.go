// Package app provides the top-level application lifecycle management for the
// bet slip engine. It wires together all dependencies (the slip record store,
// settlement and catalog clients, services, and notifications), starts the
// HTTP server and the odds feed, and blocks until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wagerpool/betslip/internal/config"
	"github.com/wagerpool/betslip/internal/domain"
	"github.com/wagerpool/betslip/internal/feed"
	"github.com/wagerpool/betslip/internal/server"
	"github.com/wagerpool/betslip/internal/server/handler"
)

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the HTTP
// server and the catalog odds feed, and blocks until the context is
// cancelled. On return it runs all registered cleanup functions.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("backend", a.cfg.Storage.Backend),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	g, ctx := errgroup.WithContext(ctx)

	// --- HTTP server ---
	handlers := server.Handlers{
		Health: handler.NewHealthHandler(a.cfg.Storage.Backend, a.logger),
		Slip: handler.NewSlipHandler(
			deps.Slips,
			deps.Placer,
			deps.Validator,
			deps.Notifier,
			a.cfg.Slip.PoolID,
			a.logger,
		),
	}
	if deps.Catalog != nil {
		handlers.Events = handler.NewEventHandler(deps.Catalog, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, a.logger)

	g.Go(func() error {
		return srv.Start()
	})

	// Shut the server down when the context is cancelled.
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// --- Catalog odds feed ---
	// Keeps displayed prices current for every market held on an active slip.
	if a.cfg.Catalog.WSURL != "" {
		oddsFeed := feed.NewCatalogFeed(
			a.cfg.Catalog.WSURL,
			deps.Slips.ActiveEventIDs,
			func(eventID string, betType domain.BetType, prop *domain.PlayerProp, american int) {
				deps.Slips.ApplyQuote(eventID, betType, prop, american)
			},
			a.logger,
		)
		g.Go(func() error {
			return oddsFeed.Run(ctx)
		})
	}

	err = g.Wait()
	if err != nil && ctx.Err() != nil {
		// Cancellation-driven shutdown is not a failure.
		err = nil
	}
	return err
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
