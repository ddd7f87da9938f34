// Package config loads runtime configuration from an optional YAML file
// with environment-variable overrides applied on top.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Parser  ParserConfig  `yaml:"parser"`
}

// StorageConfig selects and parameterizes the persistence backend.
type StorageConfig struct {
	// Backend is "sqlite" or "postgres".
	Backend     string `yaml:"backend" env:"RANKFORGE_STORAGE_BACKEND"`
	SQLitePath  string `yaml:"sqlite_path" env:"RANKFORGE_SQLITE_PATH"`
	PostgresDSN string `yaml:"postgres_dsn" env:"RANKFORGE_POSTGRES_DSN"`
}

// LoggingConfig controls the slog setup.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"RANKFORGE_LOG_LEVEL"`
}

// ParserConfig holds parser tunables.
type ParserConfig struct {
	// RoundEndLookahead bounds how many lines after a Round_End line
	// are scanned for the per-player stat block.
	RoundEndLookahead int `yaml:"round_end_lookahead" env:"RANKFORGE_ROUND_END_LOOKAHEAD"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend:    "sqlite",
			SQLitePath: "rankforge.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Parser: ParserConfig{
			RoundEndLookahead: 16,
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	if c.Parser.RoundEndLookahead < 1 {
		return fmt.Errorf("parser.round_end_lookahead must be at least 1, got %d", c.Parser.RoundEndLookahead)
	}
	return nil
}
