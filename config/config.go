// Package config loads process configuration from the environment.
//
// A `.env` file is read first when present; real environment variables win.
// MONGODB_URI is the only required value. Everything else has a default.
package config

import (
	"strings"

	"devevent/errs"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultDatabase = "devevent"
	DefaultPort     = ":8080"
	DefaultLogLevel = "info"
)

// Config is the full set of environment-driven settings.
type Config struct {
	MongoURI      string `koanf:"mongodb_uri" validate:"required"`
	MongoDatabase string `koanf:"mongodb_database"`
	Port          string `koanf:"port"`
	RedisAddr     string `koanf:"redis_addr"`
	LogLevel      string `koanf:"log_level"`
	AppEnv        string `koanf:"app_env"`
}

// Production reports whether APP_ENV is "production".
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

// Load reads .env (if any) and the environment into a Config. A missing
// MONGODB_URI yields a *errs.ConfigurationError.
func Load() (*Config, error) {
	// .env is optional; the process environment is authoritative.
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, &errs.ConfigurationError{Key: "environment", Reason: err.Error()}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, &errs.ConfigurationError{Key: "environment", Reason: err.Error()}
	}
	cfg.MongoURI = strings.TrimSpace(cfg.MongoURI)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &errs.ConfigurationError{Key: "MONGODB_URI", Reason: "is required"}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MongoDatabase == "" {
		c.MongoDatabase = DefaultDatabase
	}
	switch {
	case c.Port == "":
		c.Port = DefaultPort
	case c.Port[0] != ':':
		c.Port = ":" + c.Port
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.AppEnv == "" {
		c.AppEnv = "development"
	}
}
