package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/shopmesh/storefront/env"
)

// Config is the full storefront configuration, loaded from a TOML file with
// environment variable overrides applied on top.
type Config struct {
	AppName string `toml:"app_name"`

	Server    ServerConfig    `toml:"server"`
	Logger    LoggerConfig    `toml:"logger"`
	Database  DatabaseConfig  `toml:"database"`
	KV        KVConfig        `toml:"kv"`
	Auth      AuthConfig      `toml:"auth"`
	Payment   PaymentConfig   `toml:"payment"`
	Blob      BlobConfig      `toml:"blob"`
	Email     EmailConfig     `toml:"email"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Images    ImagesConfig    `toml:"images"`
}

type ServerConfig struct {
	Port            string        `toml:"port"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level string `toml:"level"`
}

type DatabaseConfig struct {
	// Provider is one of "postgres" or "sqlite".
	Provider        string        `toml:"provider"`
	URL             string        `toml:"url"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type KVConfig struct {
	// Provider is one of "database", "redis" or "memory".
	Provider string `toml:"provider"`
	RedisURL string `toml:"redis_url"`
}

type AuthConfig struct {
	// BaseURL is the identity provider's REST endpoint.
	BaseURL string `toml:"base_url"`
	// JWKSURL is where the provider publishes its signing keys. When empty,
	// bearer token verification is disabled (local development).
	JWKSURL    string `toml:"jwks_url"`
	ServiceKey string `toml:"-"`
}

type PaymentConfig struct {
	APIURL    string `toml:"api_url"`
	SecretKey string `toml:"-"`
}

type BlobConfig struct {
	APIURL     string `toml:"api_url"`
	Bucket     string `toml:"bucket"`
	ServiceKey string `toml:"-"`
}

type EmailConfig struct {
	Enabled     bool   `toml:"enabled"`
	Provider    string `toml:"provider"`
	FromAddress string `toml:"from_address"`
}

type RateLimitConfig struct {
	Enabled bool          `toml:"enabled"`
	Window  time.Duration `toml:"window"`
	Max     int           `toml:"max"`
}

type ImagesConfig struct {
	// RequireSignedURLs rejects fetch requests without a valid HMAC
	// signature so the endpoint cannot be used as an open proxy.
	RequireSignedURLs bool   `toml:"require_signed_urls"`
	SigningSecret     string `toml:"-"`
	MaxBytes          int64  `toml:"max_bytes"`
}

// Load reads the TOML config file at path (optional) and applies environment
// overrides and defaults. A missing file is not an error; everything can be
// configured through the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		path = os.Getenv(env.EnvConfigPath)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv(env.EnvPort, c.Server.Port)
	c.Database.URL = getEnv(env.EnvDatabaseURL, c.Database.URL)
	c.KV.RedisURL = getEnv(env.EnvRedisURL, c.KV.RedisURL)

	c.Auth.BaseURL = getEnv(env.EnvAuthAPIURL, c.Auth.BaseURL)
	c.Auth.JWKSURL = getEnv(env.EnvAuthJWKSURL, c.Auth.JWKSURL)
	c.Auth.ServiceKey = os.Getenv(env.EnvAuthServiceKey)

	c.Payment.APIURL = getEnv(env.EnvPaymentAPIURL, c.Payment.APIURL)
	c.Payment.SecretKey = os.Getenv(env.EnvPaymentSecretKey)

	c.Blob.APIURL = getEnv(env.EnvBlobAPIURL, c.Blob.APIURL)
	c.Blob.ServiceKey = os.Getenv(env.EnvBlobServiceKey)

	c.Email.FromAddress = getEnv(env.EnvEmailFrom, c.Email.FromAddress)

	c.Images.SigningSecret = os.Getenv(env.EnvSecret)
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "storefront"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Database.Provider == "" {
		c.Database.Provider = "sqlite"
	}
	if c.Database.Provider == "sqlite" && c.Database.URL == "" {
		c.Database.URL = "data/storefront.db"
	}
	if c.KV.Provider == "" {
		c.KV.Provider = "database"
	}
	if c.Payment.APIURL == "" {
		c.Payment.APIURL = "https://api.stripe.com"
	}
	if c.Blob.Bucket == "" {
		c.Blob.Bucket = "avatars"
	}
	if c.Email.Provider == "" {
		c.Email.Provider = "smtp"
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.RateLimit.Max == 0 {
		c.RateLimit.Max = 30
	}
	if c.Images.MaxBytes == 0 {
		c.Images.MaxBytes = 10 << 20
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
