package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies BETSLIP_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known BETSLIP_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "BETSLIP_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "BETSLIP_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "BETSLIP_SERVER_API_KEY")

	// ── Storage ──
	setStr(&cfg.Storage.Backend, "BETSLIP_STORAGE_BACKEND")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "BETSLIP_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "BETSLIP_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "BETSLIP_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "BETSLIP_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "BETSLIP_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "BETSLIP_REDIS_TLS_ENABLED")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "BETSLIP_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "BETSLIP_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "BETSLIP_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "BETSLIP_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "BETSLIP_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "BETSLIP_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "BETSLIP_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.MaxConns, "BETSLIP_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.MinConns, "BETSLIP_POSTGRES_POOL_MIN_CONNS")

	// ── Settlement ──
	setStr(&cfg.Settlement.BaseURL, "BETSLIP_SETTLEMENT_BASE_URL")
	setStr(&cfg.Settlement.APIKey, "BETSLIP_SETTLEMENT_API_KEY")
	setStr(&cfg.Settlement.APISecret, "BETSLIP_SETTLEMENT_API_SECRET")

	// ── Catalog ──
	setStr(&cfg.Catalog.BaseURL, "BETSLIP_CATALOG_BASE_URL")
	setStr(&cfg.Catalog.WSURL, "BETSLIP_CATALOG_WS_URL")

	// ── Slip ──
	setStr(&cfg.Slip.PoolID, "BETSLIP_SLIP_POOL_ID")
	setFloat64(&cfg.Slip.MaxStake, "BETSLIP_SLIP_MAX_STAKE")
	setInt(&cfg.Slip.MaxLegs, "BETSLIP_SLIP_MAX_LEGS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "BETSLIP_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "BETSLIP_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "BETSLIP_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "BETSLIP_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "BETSLIP_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
