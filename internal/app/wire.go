package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wagerpool/betslip/internal/config"
	"github.com/wagerpool/betslip/internal/crypto"
	"github.com/wagerpool/betslip/internal/domain"
	"github.com/wagerpool/betslip/internal/notify"
	"github.com/wagerpool/betslip/internal/placer"
	"github.com/wagerpool/betslip/internal/platform/catalog"
	"github.com/wagerpool/betslip/internal/platform/settlement"
	"github.com/wagerpool/betslip/internal/service"
	"github.com/wagerpool/betslip/internal/store/postgres"
	storeredis "github.com/wagerpool/betslip/internal/store/redis"
	"github.com/wagerpool/betslip/internal/validate"
)

// Dependencies bundles every domain-level dependency that the application
// needs to operate. It is constructed by Wire and torn down by the returned
// cleanup function.
type Dependencies struct {
	// Persistence
	Records domain.SlipRecordStore // nil when backend is "none"

	// Platform clients
	Settlement *settlement.Client
	Catalog    *catalog.Client // nil when no catalog base_url configured

	// Core services
	Slips     *service.SlipService
	Validator *validate.Engine
	Placer    *placer.Orchestrator

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Slip record store ---
	switch strings.ToLower(cfg.Storage.Backend) {
	case "redis":
		redisClient, err := storeredis.New(ctx, storeredis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Records = storeredis.NewSlipStore(redisClient)

	case "postgres":
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.MaxConns,
			MinConns: cfg.Postgres.MinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if err := pgClient.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres schema: %w", err)
		}
		deps.Records = postgres.NewSlipStore(pgClient.Pool())

	case "none":
		// In-memory only; slips do not survive restarts.
	}

	// --- Settlement API client ---
	var auth *crypto.HMACAuth
	if cfg.Settlement.APIKey != "" {
		auth = &crypto.HMACAuth{
			Key:    cfg.Settlement.APIKey,
			Secret: cfg.Settlement.APISecret,
		}
	}
	deps.Settlement = settlement.NewClient(cfg.Settlement.BaseURL, auth)

	// --- Catalog client ---
	if cfg.Catalog.BaseURL != "" {
		deps.Catalog = catalog.NewClient(cfg.Catalog.BaseURL)
	}

	// --- Core services ---
	deps.Slips = service.NewSlipService(deps.Records, logger)
	deps.Validator = validate.New(cfg.Slip.MaxStake, cfg.Slip.MaxLegs)
	deps.Placer = placer.New(deps.Settlement, deps.Records, deps.Validator, logger)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
