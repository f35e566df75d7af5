package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
api:
  base_url: https://api.example/v1
  timeout: 30s
cache:
  ttl: 2m
share:
  origin: https://study.example
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("STUDY_API_URL", "")
	t.Setenv("STUDY_TOKEN", "env-token")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example/v1" || cfg.Share.Origin != "https://study.example" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Session.Token != "env-token" {
		t.Fatalf("expected env token override, got %q", cfg.Session.Token)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected PORT override, got %q", cfg.Server.Port)
	}
	if got := TTLDuration(cfg.Cache.TTL, time.Minute); got != 2*time.Minute {
		t.Fatalf("expected 2m, got %v", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestMissingFileNeedsAPIURL(t *testing.T) {
	t.Setenv("STUDY_API_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing API URL to fail validation")
	}

	t.Setenv("STUDY_API_URL", "http://localhost:9000")
	cfg, _ = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected env URL to satisfy validation, got %v", err)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("soon", time.Second); got != time.Second {
		t.Fatalf("expected fallback for invalid value, got %v", got)
	}
}
