package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	ncerr "telnetd/internal/errors"
)

// TestValidate_ErrorMessages verifies that Validate returns actionable
// error messages naming the offending field.
func TestValidate_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantSub string // substring expected in error
	}{
		{
			name:    "port out of range has hint",
			mutate:  func(c *Config) { c.Port = 70000 },
			field:   "port",
			wantSub: "hint:",
		},
		{
			name:    "negative port",
			mutate:  func(c *Config) { c.Port = -1 },
			field:   "port",
			wantSub: "--port=-1",
		},
		{
			name:    "zero sessions",
			mutate:  func(c *Config) { c.MaxSessions = 0 },
			field:   "max-sessions",
			wantSub: "at least 1",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			field:   "timeout",
			wantSub: "must be positive",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.PollInterval = 0 },
			field:   "poll-interval",
			wantSub: "must be positive",
		},
		{
			name:    "negative accept rate",
			mutate:  func(c *Config) { c.AcceptRate = -2 },
			field:   "accept-rate",
			wantSub: "hint:",
		},
		{
			name:    "zero listen retries",
			mutate:  func(c *Config) { c.ListenRetries = 0 },
			field:   "listen-retries",
			wantSub: "at least 1",
		},
		{
			name:    "user without device",
			mutate:  func(c *Config) { c.User = "admin" },
			field:   "device",
			wantSub: "required with --user",
		},
		{
			name:    "device without user",
			mutate:  func(c *Config) { c.Device = "esp" },
			field:   "user",
			wantSub: "required with --device",
		},
		{
			name:    "empty alias",
			mutate:  func(c *Config) { c.Aliases = map[string]string{" ": "help"} },
			field:   "alias",
			wantSub: "must not be empty",
		},
		{
			name:    "empty command name",
			mutate:  func(c *Config) { c.Commands = []*StaticCommand{{Name: ""}} },
			field:   "commands[0].name",
			wantSub: "non-empty",
		},
		{
			name: "duplicate command",
			mutate: func(c *Config) {
				c.Commands = []*StaticCommand{{Name: "ver"}, {Name: "ver"}}
			},
			field:   "commands[1].name",
			wantSub: "defined twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			var ce *ncerr.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("error %T should be *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestValidate_Accepts(t *testing.T) {
	cfg := Default()
	cfg.Port = 0
	cfg.User, cfg.Device = "admin", "esp"
	cfg.AcceptRate = 2.5
	cfg.Timeout = 250 * time.Millisecond
	cfg.Aliases = map[string]string{"?": "help", "ghost": "missing"}
	cfg.Commands = []*StaticCommand{{Name: "version", Reply: "1.0"}}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
