// Package config loads service configuration from environment variables,
// with .env support for local development.
package config

import (
	"fmt"
	"os"
)

const (
	// EnvProduction gates the settings that must not run insecurely.
	EnvProduction = "production"

	// devSessionSecret signs cookies when SESSION_SECRET is unset outside
	// production. Load rejects it in production.
	devSessionSecret = "dev-only-insecure-session-secret"
)

// Config holds all service configuration.
type Config struct {
	Port        string
	Env         string
	DBDriver    string // "sqlite" or "postgres"
	DBPath      string
	PostgresDSN string
	RedisAddr   string
	RedisPass   string

	SessionSecret    string
	SessionSecretDev bool // true when the insecure dev fallback is in use

	UseMockData bool

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	TemplateDir string
	StaticDir   string
}

// Load reads the environment. It fails rather than starting in an unsafe
// state: production requires a real SESSION_SECRET and refuses mock data,
// and the postgres driver requires a DSN.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getenv("PORT", "8080"),
		Env:         getenv("APP_ENV", "development"),
		DBDriver:    getenv("DB_DRIVER", "sqlite"),
		DBPath:      getenv("DB_PATH", "articlesite.db"),
		PostgresDSN: getenv("POSTGRES_DSN", ""),
		RedisAddr:   getenv("REDIS_ADDR", ""),
		RedisPass:   getenv("REDIS_PASSWORD", ""),

		SessionSecret: getenv("SESSION_SECRET", ""),
		UseMockData:   getenv("USE_MOCK_DATA", "false") == "true",

		GitHubClientID:     getenv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getenv("GITHUB_CLIENT_SECRET", ""),
		GitHubCallbackURL:  getenv("GITHUB_CALLBACK_URL", ""),

		TemplateDir: getenv("TEMPLATE_DIR", "web/templates"),
		StaticDir:   getenv("STATIC_DIR", "web/static"),
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("config: SESSION_SECRET must be set in production")
		}
		cfg.SessionSecret = devSessionSecret
		cfg.SessionSecretDev = true
	}

	if cfg.UseMockData && cfg.IsProduction() {
		return nil, fmt.Errorf("config: USE_MOCK_DATA is not allowed in production")
	}

	switch cfg.DBDriver {
	case "sqlite":
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("config: DB_DRIVER=postgres requires POSTGRES_DSN")
		}
	default:
		return nil, fmt.Errorf("config: unknown DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production gating.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// GitHubConfigured reports whether the optional GitHub sign-in flow has the
// credentials it needs.
func (c *Config) GitHubConfigured() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != "" && c.GitHubCallbackURL != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
