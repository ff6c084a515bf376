package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if !cfg.SessionSecretDev {
		t.Error("expected the dev session secret fallback outside production")
	}
	if cfg.IsProduction() {
		t.Error("default env must not be production")
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Errorf("Load() error = %v, want SESSION_SECRET error", err)
	}
}

func TestLoad_ProductionRefusesMockData(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "a-real-production-secret-value")
	t.Setenv("USE_MOCK_DATA", "true")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "USE_MOCK_DATA") {
		t.Errorf("Load() error = %v, want USE_MOCK_DATA error", err)
	}
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail when DB_DRIVER=postgres has no DSN")
	}

	t.Setenv("POSTGRES_DSN", "postgres://localhost/articlesite")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with DSN error = %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject an unknown DB_DRIVER")
	}
}

func TestGitHubConfigured(t *testing.T) {
	cfg := &Config{}
	if cfg.GitHubConfigured() {
		t.Error("empty credentials must not count as configured")
	}

	cfg.GitHubClientID = "id"
	cfg.GitHubClientSecret = "secret"
	cfg.GitHubCallbackURL = "http://localhost:8080/auth/github/callback"
	if !cfg.GitHubConfigured() {
		t.Error("full credentials should count as configured")
	}
}
