// internal/config/config.go
//
// Environment-driven configuration.
// Responsibilities:
//   - Read LOG_*, STORE_* and game settings with defaults.
//   - Tell main which location string the chosen store driver expects.

package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Logging LoggingConfig
	Store   StoreConfig
	Game    GameConfig
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string
	Format string // "console" or "json"
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string // memory | file | sqlite | sqlite-pure | postgres | mysql
	Path   string // sqlite file or file-store directory
	DSN    string // postgres/mysql connection string
}

// GameConfig holds gameplay knobs.
type GameConfig struct {
	MaxAttempts int
	Seed        uint64 // 0 picks a random seed
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", "sqlite"),
			Path:   getEnv("STORE_PATH", "./data/studywordle.db"),
			DSN:    getEnv("STORE_DSN", ""),
		},
		Game: GameConfig{
			MaxAttempts: getEnvInt("MAX_ATTEMPTS", 6),
			Seed:        getEnvUint("SEED", 0),
		},
	}
}

// StoreTarget returns what the configured driver expects as its location:
// the DSN for network databases, the path otherwise.
func (c *Config) StoreTarget() string {
	switch c.Store.Driver {
	case "postgres", "postgresql", "mysql":
		return c.Store.DSN
	}
	return c.Store.Path
}

// getEnv returns an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as an integer or a default value.
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}
