// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. In development a local
.env file is read first with 'joho/godotenv'; real environment variables always win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the YaMDb API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Empty selects the in-process code store.
	RedisURL string `env:"REDIS_URL"`

	// Confirmation codes and access credentials
	CodeTTL  time.Duration `env:"CONFIRMATION_CODE_TTL" envDefault:"24h"`
	TokenTTL time.Duration `env:"ACCESS_TOKEN_TTL"      envDefault:"24h"`

	// Credential signing material: an HMAC secret, or an RSA key pair
	SigningKey     string `env:"JWT_SIGNING_KEY"`
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH"`

	// Outbound mail for confirmation codes. Empty host logs codes instead.
	SMTP SMTPConfig `envPrefix:"SMTP_"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// Comma-separated CIDRs or addresses of reverse proxies whose
	// X-Forwarded-For / X-Real-IP headers are believed. Empty trusts none.
	TrustedProxies string `env:"TRUSTED_PROXIES"`

	// Per-IP request budget
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"150"`
}

// SMTPConfig describes the mail relay used by the confirmation notifier.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT"     envDefault:"587"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"     envDefault:"noreply@yamdb.app"`
	Security string `env:"SECURITY" envDefault:"starttls"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	return Parse(env.Options{})
}

// Parse maps the environment described by opts into a validated [Config].
//
// Tests pass opts.Environment to avoid touching the process environment.
func Parse(opts env.Options) (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	if c.CodeTTL <= 0 {
		return errors.New("config: CONFIRMATION_CODE_TTL must be positive")
	}

	if c.TokenTTL <= 0 {
		return errors.New("config: ACCESS_TOKEN_TTL must be positive")
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("config: RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if _, err := c.ProxyPrefixes(); err != nil {
		return err
	}

	if c.SigningKey == "" && !c.UsesKeyPair() {
		return errors.New("config: JWT_SIGNING_KEY or both JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH are required")
	}

	if (c.JWTPrivKeyPath == "") != (c.JWTPubKeyPath == "") {
		return errors.New("config: JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set together")
	}

	return nil
}

// UsesKeyPair reports whether access tokens are signed with the RSA key pair.
func (c *Config) UsesKeyPair() bool {
	return c.JWTPrivKeyPath != "" && c.JWTPubKeyPath != ""
}

// ProxyPrefixes parses TrustedProxies. A bare address becomes a single-host prefix.
func (c *Config) ProxyPrefixes() ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range strings.Split(c.TrustedProxies, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if prefix, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("config: invalid TRUSTED_PROXIES entry %q", entry)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Origins returns the configured extra CORS origins.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
