package config

import (
	"testing"
	"time"
)

// ── Default ──────────────────────────────────────────────────────────

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Port != 23 {
		t.Errorf("Port = %d, want 23", cfg.Port)
	}
	if cfg.MaxSessions != DefaultMaxSessions {
		t.Errorf("MaxSessions = %d, want %d", cfg.MaxSessions, DefaultMaxSessions)
	}
	if cfg.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", cfg.Timeout)
	}
	if cfg.Banner != DefaultBanner {
		t.Errorf("Banner = %q", cfg.Banner)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// ── Prompt ───────────────────────────────────────────────────────────

func TestPrompt(t *testing.T) {
	tests := []struct {
		name   string
		user   string
		device string
		want   string
	}{
		{"default", "", "", "root@esp:~$"},
		{"configured", "admin", "gateway", "admin@gateway:~$"},
		{"user only", "admin", "", "root@esp:~$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{User: tt.user, Device: tt.device}
			if got := cfg.Prompt(); got != tt.want {
				t.Errorf("Prompt() = %q, want %q", got, tt.want)
			}
		})
	}
}
