// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinSigningKeyLength is the shortest accepted HMAC secret.
const MinSigningKeyLength = 32

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":3000"`
	BodyLimit       int           `env:"BODY_LIMIT" envDefault:"1048576"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver       string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN          string `env:"DB_DSN" envDefault:"file:personen.db"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMigrate      bool   `env:"DB_MIGRATE" envDefault:"true"`

	JWTSecret    string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer    string        `env:"JWT_ISSUER" envDefault:"person-auth"`
	AuthScheme   string        `env:"AUTH_SCHEME" envDefault:"Bearer"`
	ContextKey   string        `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"12"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < MinSigningKeyLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSigningKeyLength))
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	if c.DBMaxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}
	if c.StoreTimeout < 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) GetSigningKey() string {
	return c.JWTSecret
}

func (c *Config) GetIssuer() string {
	return c.JWTIssuer
}

func (c *Config) GetAuthScheme() string {
	return c.AuthScheme
}

func (c *Config) GetContextKey() string {
	return c.ContextKey
}

func (c *Config) GetStoreTimeout() time.Duration {
	return c.StoreTimeout
}
