package config

import (
	"testing"
	"time"

	"github.com/playforge/arcade-api/internal/platform/logging"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("expected dev env, got %q", cfg.AppEnv)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != "./data/arcade.db" {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.DBBusyTimeout != 5*time.Second {
		t.Fatalf("unexpected busy timeout %s", cfg.DBBusyTimeout)
	}
	if cfg.MigrateAttempts != 5 {
		t.Fatalf("unexpected migrate attempts %d", cfg.MigrateAttempts)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected log level %v", cfg.LogLevel)
	}
	if cfg.BroadcastMaxWorkers != 8 {
		t.Fatalf("unexpected broadcast workers %d", cfg.BroadcastMaxWorkers)
	}
}

func TestLoad_RejectsInvalidEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid APP_ENV")
	}
}

func TestLoad_TelegramTokenRequiredWhenEnabled(t *testing.T) {
	t.Setenv("TELEGRAM_ENABLED", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when telegram is enabled without a token")
	}
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "2")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://game.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.DBMaxOpenConns != 2 {
		t.Fatalf("unexpected max open conns %d", cfg.DBMaxOpenConns)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("unexpected log level %v", cfg.LogLevel)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
}
