// Package config loads runtime settings from defaults, an optional config
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the server needs. It is built once in main and
// passed down explicitly; no package reads the environment on its own.
type Config struct {
	Port       int           `mapstructure:"PORT"`
	DBPath     string        `mapstructure:"DB_PATH"`
	Secret     string        `mapstructure:"SECRET"`
	BcryptCost int           `mapstructure:"BCRYPT_COST"`
	TokenTTL   time.Duration `mapstructure:"TOKEN_TTL"`
	LogLevel   string        `mapstructure:"LOG_LEVEL"`
}

// Load reads the configuration.
//
// path is an optional config file (for example ".env"); a missing file is
// not an error. Environment variables always override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", 3003)
	v.SetDefault("DB_PATH", "data/bloglist.db")
	v.SetDefault("SECRET", "")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("TOKEN_TTL", time.Hour)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if strings.HasSuffix(path, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if cfg.Secret == "" {
		return nil, errors.New("config: SECRET must be set")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid PORT %d", cfg.Port)
	}

	return &cfg, nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
