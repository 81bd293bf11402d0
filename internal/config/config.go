// Package config defines the top-level configuration for the bet slip engine
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by BETSLIP_* environment
// variables.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Storage    StorageConfig    `toml:"storage"`
	Redis      RedisConfig      `toml:"redis"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Settlement SettlementConfig `toml:"settlement"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Slip       SlipConfig       `toml:"slip"`
	Notify     NotifyConfig     `toml:"notify"`
	LogLevel   string           `toml:"log_level"`
}

// ServerConfig holds the HTTP API parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"` // empty disables auth
}

// StorageConfig selects the slip persistence backend.
type StorageConfig struct {
	// Backend is "redis", "postgres", or "none".
	Backend string `toml:"backend"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	SSLMode  string `toml:"ssl_mode"`
	MaxConns int    `toml:"pool_max_conns"`
	MinConns int    `toml:"pool_min_conns"`
}

// SettlementConfig holds the settlement API endpoint and credentials.
type SettlementConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
}

// CatalogConfig holds the catalog service endpoints.
type CatalogConfig struct {
	BaseURL string `toml:"base_url"`
	WSURL   string `toml:"ws_url"` // empty disables the odds feed
}

// SlipConfig holds slip-level limits and the pool context.
type SlipConfig struct {
	PoolID   string  `toml:"pool_id"`
	MaxStake float64 `toml:"max_stake"` // 0 disables the ceiling
	MaxLegs  int     `toml:"max_legs"`  // 0 disables the ceiling
}

// NotifyConfig holds notification channel parameters.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns the built-in configuration used when a field is absent
// from the TOML file.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Backend: "redis",
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "betslip",
			User:     "postgres",
			SSLMode:  "disable",
			MaxConns: 10,
			MinConns: 2,
		},
		Slip: SlipConfig{
			MaxStake: 10_000,
			MaxLegs:  12,
		},
		LogLevel: "info",
	}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validBackends = map[string]bool{
	"redis":    true,
	"postgres": true,
	"none":     true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port %d out of range", c.Server.Port))
	}

	if !validBackends[strings.ToLower(c.Storage.Backend)] {
		errs = append(errs, fmt.Sprintf("storage: unknown backend %q (valid: redis, postgres, none)", c.Storage.Backend))
	}
	switch strings.ToLower(c.Storage.Backend) {
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty for the redis backend")
		}
	case "postgres":
		if c.Postgres.DSN == "" && (c.Postgres.Host == "" || c.Postgres.Database == "") {
			errs = append(errs, "postgres: dsn or host+database required for the postgres backend")
		}
	}

	if c.Settlement.BaseURL == "" {
		errs = append(errs, "settlement: base_url must not be empty")
	}
	// Key and secret must be set together, or both empty (unsigned dev mode).
	if (c.Settlement.APIKey != "") != (c.Settlement.APISecret != "") {
		errs = append(errs, "settlement: api_key and api_secret must be set together")
	}

	if c.Slip.PoolID == "" {
		errs = append(errs, "slip: pool_id must not be empty")
	}
	if c.Slip.MaxStake < 0 {
		errs = append(errs, "slip: max_stake must not be negative")
	}
	if c.Slip.MaxLegs < 0 {
		errs = append(errs, "slip: max_legs must not be negative")
	}

	if (c.Notify.TelegramToken != "") != (c.Notify.TelegramChatID != "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
