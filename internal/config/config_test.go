package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("CACHE_TYPE", "")
	t.Setenv("FORMANCE_STACK_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "skinmarket.db" {
		t.Errorf("Expected default database path, got %s", cfg.Database.Path)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Cache.Type != "memory" || cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.Formance.Enabled() {
		t.Error("Expected Formance to be disabled without credentials")
	}
	if cfg.Mirror.BatchSize != 100 {
		t.Errorf("Expected batch size 100, got %d", cfg.Mirror.BatchSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/market.db")
	t.Setenv("CACHE_TYPE", "redis")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("FORMANCE_STACK_URL", "https://stack.example")
	t.Setenv("FORMANCE_CLIENT_ID", "id")
	t.Setenv("FORMANCE_CLIENT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "/tmp/market.db" || cfg.Cache.Type != "redis" || cfg.Cache.RedisDB != 3 {
		t.Errorf("Overrides not applied: %+v %+v", cfg.Database, cfg.Cache)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Expected 30s TTL, got %s", cfg.Cache.TTL)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected origins: %v", cfg.Server.AllowedOrigins)
	}
	if !cfg.Formance.Enabled() {
		t.Error("Expected Formance to be enabled")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("CACHE_TTL", "five minutes")
	if _, err := Load(); err == nil {
		t.Error("Expected invalid duration to fail")
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	t.Setenv("SOME_BOOL", "maybe")
	if getEnvInt("SOME_INT", 7) != 7 {
		t.Error("Expected unparsable int to fall back")
	}
	if !getEnvBool("SOME_BOOL", true) {
		t.Error("Expected unparsable bool to fall back")
	}
}
