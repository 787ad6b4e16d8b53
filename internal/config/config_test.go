package config_test

import (
	"testing"
	"time"

	"github.com/neomorfeo/venuedir/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DatabasePath != "venuedir.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "venuedir.db")
	}
	if cfg.RateLimit.Limit != 100 || cfg.RateLimit.Period != time.Minute {
		t.Errorf("RateLimit = %d per %v, want 100 per minute", cfg.RateLimit.Limit, cfg.RateLimit.Period)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_PATH", "/tmp/dir.db")
	t.Setenv("RATE_LIMIT", "10-S")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.DatabasePath != "/tmp/dir.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "/tmp/dir.db")
	}
	if cfg.RateLimit.Limit != 10 || cfg.RateLimit.Period != time.Second {
		t.Errorf("RateLimit = %d per %v, want 10 per second", cfg.RateLimit.Limit, cfg.RateLimit.Period)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"bad rate", map[string]string{"JWT_SECRET": "s", "RATE_LIMIT": "lots"}},
		{"bad timeout", map[string]string{"JWT_SECRET": "s", "SHUTDOWN_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
