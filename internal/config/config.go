// Package config loads server configuration from the environment and an
// optional config file.
//
// Every key can be set through an env var: prefix BLOGLIST_, dots replaced by
// underscores. auth.jwt_secret becomes BLOGLIST_AUTH_JWT_SECRET.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// minSecretLength is the shortest HMAC secret accepted for signing tokens.
const minSecretLength = 16

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Auth struct {
		JWTSecret  string        `mapstructure:"jwt_secret"`
		TokenTTL   time.Duration `mapstructure:"token_ttl"`
		BcryptCost int           `mapstructure:"bcrypt_cost"`
	} `mapstructure:"auth"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. It does not validate; call Validate.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BLOGLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults double as the key list AutomaticEnv consults during Unmarshal.
	v.SetDefault("server.port", 3003)
	v.SetDefault("database.path", "data/bloglist.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.bcrypt_cost", bcrypt.DefaultCost)
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports the first setting the server cannot start with.
func (c Config) Validate() error {
	switch {
	case c.Auth.JWTSecret == "":
		return errors.New("auth.jwt_secret is required (BLOGLIST_AUTH_JWT_SECRET)")
	case len(c.Auth.JWTSecret) < minSecretLength:
		return fmt.Errorf("auth.jwt_secret must be at least %d characters", minSecretLength)
	case c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost:
		return fmt.Errorf("auth.bcrypt_cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost)
	case c.Auth.TokenTTL <= 0:
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	case c.Database.Path == "":
		return errors.New("database.path is required")
	}
	return nil
}

// SlogLevel maps log.level onto a slog.Level. Unknown values fall back to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
