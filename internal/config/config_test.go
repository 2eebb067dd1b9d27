package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "ROSTER_SOURCE", "ROSTER_SOURCE_URL", "LOADER_TIMEOUT", "LOADER_MAX_ATTEMPTS", "REDIS_ADDR", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.Env != "dev" || cfg.Port != 8080 {
		t.Fatalf("unexpected env/port: %q %d", cfg.Env, cfg.Port)
	}
	if cfg.Source != "http" || cfg.SourceURL != DefaultSourceURL {
		t.Fatalf("unexpected source: %q %q", cfg.Source, cfg.SourceURL)
	}
	if cfg.LoaderTimeout != 10*time.Second || cfg.LoaderMaxAttempts != 1 {
		t.Fatalf("unexpected loader settings: %v %d", cfg.LoaderTimeout, cfg.LoaderMaxAttempts)
	}
	if cfg.RedisAddr != "" || cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no redis and no cors origins")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ROSTER_SOURCE", "Postgres")
	t.Setenv("LOADER_TIMEOUT", "3")
	t.Setenv("ROSTER_CACHE_TTL", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://roster.example.com,")
	for _, k := range []string{"DB_PORT", "DB_USER", "DB_PASSWORD", "DB_SSLMODE"} {
		t.Setenv(k, "")
	}
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "mirror")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Fatalf("port: got %d", cfg.Port)
	}
	if cfg.Source != "postgres" {
		t.Fatalf("source: got %q", cfg.Source)
	}
	if cfg.LoaderTimeout != 3*time.Second {
		t.Fatalf("loader timeout: got %v", cfg.LoaderTimeout)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Fatalf("cache ttl: got %v", cfg.CacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://roster.example.com" {
		t.Fatalf("cors origins: got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.DBURL != "postgres://roster:roster@db:5432/mirror?sslmode=disable" {
		t.Fatalf("db url: got %s", cfg.DBURL)
	}
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("LOADER_MAX_ATTEMPTS", "three")

	if got := getEnvInt("LOADER_MAX_ATTEMPTS", 1); got != 1 {
		t.Fatalf("got %d, want fallback 1", got)
	}
}
