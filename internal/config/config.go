// internal/config/config.go
//
// Process configuration. Values come from the environment, optionally
// seeded from a .env file in the working directory (development).
// Command-line flags override individual fields after Load.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable of the server and the console game.
type Config struct {
	Port     string `envconfig:"PORT" default:"5175"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// LogFormat is "json" or "console".
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	Env       string `envconfig:"APP_ENV" default:"development"`

	DatabasePath string `envconfig:"DATABASE_PATH" default:"./data/mastermind.db"`

	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev_secret_change_me"`
	JWTExpiresDays int    `envconfig:"JWT_EXPIRES_DAYS" default:"14"`
	CookieName     string `envconfig:"COOKIE_NAME" default:"mastermind_token"`
	ClientOrigin   string `envconfig:"CLIENT_ORIGIN" default:"http://localhost:5173"`

	DailySalt string `envconfig:"DAILY_SALT" default:"local_dev_salt"`

	// SessionCacheSize > 0 bounds the number of live sessions with an LRU.
	SessionCacheSize int `envconfig:"SESSION_CACHE_SIZE" default:"0"`

	DefaultLocale       string `envconfig:"DEFAULT_LOCALE" default:"en"`
	AllowSecretOverride bool   `envconfig:"ALLOW_SECRET_OVERRIDE" default:"false"`
}

// Load reads .env (if present) and the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if cfg.JWTExpiresDays <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRES_DAYS must be positive, got %d", cfg.JWTExpiresDays)
	}
	if cfg.SessionCacheSize < 0 {
		return Config{}, fmt.Errorf("SESSION_CACHE_SIZE must not be negative, got %d", cfg.SessionCacheSize)
	}
	return cfg, nil
}

// Production reports whether secure cookie attributes should be used.
func (c Config) Production() bool { return c.Env == "production" }

// TokenTTL is the lifetime of issued auth tokens.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}
