package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := parse([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("Expected worker count 2, got %d", cfg.WorkerCount)
	}
	if cfg.RefreshInterval != 300 {
		t.Errorf("Expected refresh interval 300, got %d", cfg.RefreshInterval)
	}
	if cfg.PosterConcurrency != 6 {
		t.Errorf("Expected poster concurrency 6, got %d", cfg.PosterConcurrency)
	}
	if cfg.DBPath != "./data/libria.db" {
		t.Errorf("Expected default DB path, got '%s'", cfg.DBPath)
	}
	if cfg.Session != "" || cfg.RedisAddr != "" || cfg.NtfyTopic != "" {
		t.Error("Expected optional integrations to be disabled by default")
	}
}

func TestParseFlagsAndEnv(t *testing.T) {
	t.Setenv("LIBRIA_SESSION", "abc123")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := parse([]string{"--port", "9090", "--refresh-interval", "0", "--debug"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Session != "abc123" {
		t.Errorf("Expected session from env, got '%s'", cfg.Session)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("Expected redis address from env, got '%s'", cfg.RedisAddr)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.RefreshInterval != 0 {
		t.Errorf("Expected refresh interval 0, got %d", cfg.RefreshInterval)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	invalid := [][]string{
		{"--worker-count", "0"},
		{"--poster-concurrency", "-1"},
		{"--refresh-interval", "-5"},
		{"--port"},
	}

	for _, args := range invalid {
		if _, err := parse(args); err == nil {
			t.Errorf("Expected error for %v", args)
		}
	}
}

func TestApplyTimezone(t *testing.T) {
	original := time.Local
	t.Cleanup(func() { time.Local = original })

	if err := applyTimezone("UTC"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if time.Local.String() != "UTC" {
		t.Errorf("Expected UTC, got %s", time.Local)
	}
	if err := applyTimezone("Mars/Olympus"); err == nil {
		t.Error("Expected error for unknown timezone")
	}
}
