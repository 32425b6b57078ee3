package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const defaultAPIBase = "http://localhost:8000"

type Config struct {
	Port       string `env:"PORT,        default=3000"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	LogPretty  bool   `env:"LOG_PRETTY,  default=false"`
	RenderMode string `env:"RENDER_MODE, default=client"`

	API     APIConfig
	Redis   RedisConfig
	DevAuth DevAuthConfig
}

type APIConfig struct {
	Base       string        `env:"API_BASE"`
	LegacyBase string        `env:"NUXT_PUBLIC_API_BASE"`
	Timeout    time.Duration `env:"API_TIMEOUT, default=10s"`
}

// RedisConfig enables cookie persistence when Addr is set.
type RedisConfig struct {
	Addr      string        `env:"REDIS_ADDR"`
	DB        int           `env:"REDIS_DB,           default=0"`
	CookieTTL time.Duration `env:"SESSION_COOKIE_TTL, default=12h"`
}

// DevAuthConfig configures the development auth backend (cmd/devauth).
type DevAuthConfig struct {
	Port          string        `env:"DEVAUTH_PORT,       default=8000"`
	JWTSecret     string        `env:"DEVAUTH_JWT_SECRET, default=dev-secret"`
	TokenTTL      time.Duration `env:"DEVAUTH_TOKEN_TTL,  default=24h"`
	AdminEmail    string        `env:"DEVAUTH_ADMIN_EMAIL"`
	AdminPassword string        `env:"DEVAUTH_ADMIN_PASSWORD"`
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom builds the configuration from an arbitrary lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.API.Base == "" {
		cfg.API.Base = cfg.API.LegacyBase
	}
	if cfg.API.Base == "" {
		cfg.API.Base = defaultAPIBase
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the console cannot start with.
func (c *Config) Validate() error {
	switch c.RenderMode {
	case "client", "prerender":
	default:
		return fmt.Errorf("config: RENDER_MODE must be client or prerender, got %q", c.RenderMode)
	}

	u, err := url.Parse(c.API.Base)
	if err != nil {
		return fmt.Errorf("config: API_BASE: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: API_BASE must be an absolute http(s) URL, got %q", c.API.Base)
	}

	if c.API.Timeout < 0 {
		return errors.New("config: API_TIMEOUT must not be negative")
	}
	return nil
}

// IsProduction reports whether the console runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
