// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage selects and parameterizes the snapshot backend. Leaf fields carry
// no envconfig name tags: a named tag doubles as an unprefixed fallback key,
// so STORAGE_PATH would silently fall back to the shell's PATH when unset.
// Field names alone yield the prefixed keys (STORAGE_BACKEND, ...) without
// the fallback.
type Storage struct {
	// Backend is one of "json", "postgres" or "memory".
	Backend string `default:"json"`
	// Path is the snapshot file location for the json backend.
	Path string `default:"bank_data.json"`
	// DSN is the Postgres connection string for the postgres backend.
	DSN string
}

// Admin is the fixed out-of-band administrator login. It is configuration,
// not account state.
type Admin struct {
	Username string `default:"admin"`
	Password string `default:"admin123"`
}

// Jwt configures session-token signing for the HTTP surface.
type Jwt struct {
	Secret string        `default:"banksim-dev-secret"`
	Expiry time.Duration `default:"24h"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr string `default:":3000"`
}

// Log configures the logger handler.
type Log struct {
	Level      int    `default:"0"`
	Format     string `default:"text"`
	TimeFormat string `default:"15:04:05"`
	Prefix     string `default:"banksim"`
}

// App is the root configuration.
type App struct {
	Env     string `envconfig:"APP_ENV" default:"development"`
	Storage Storage
	Admin   Admin
	Jwt     Jwt
	Server  Server
	Log     Log
}

// Load reads a .env file if present and then the process environment.
func Load(logger *slog.Logger) (*App, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using system environment variables")
	} else {
		logger.Info("Environment variables loaded from .env file")
	}
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
