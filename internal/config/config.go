// Package config defines service configuration structures and loading hooks.
// External errors are wrapped via this package's sentinel kinds so callers
// can errors.Is against them.
package config

import (
	"github.com/okian/faceoff/internal/domain/model"
)

// Config contains process configuration. The engine tuning is embedded flat
// so file and env keys stay one level deep.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBDriver selects the storage backend: "sqlite", "postgres", or empty
	// for the in-memory store.
	DBDriver string `koanf:"db_driver"`

	// DBDSN is the database connection string for the chosen driver.
	DBDSN string `koanf:"db_dsn"`

	// MaxRankingsLimit caps GET /rankings?limit.
	MaxRankingsLimit int `koanf:"max_rankings_limit"`

	// Tuning holds the comparison engine parameters; it seeds the store at
	// startup and can be hot-reloaded through the store afterwards.
	Tuning model.Tuning `koanf:",squash"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9090",
		MaxRankingsLimit: 100,
		Tuning:           model.DefaultTuning(),
	}
}
