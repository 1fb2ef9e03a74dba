// Package config defines the runtime configuration for telnetd and
// validates it.
package config

import (
	"fmt"
	"strings"
	"time"

	ncerr "telnetd/internal/errors"
)

// Config holds every tuneable for a single server run.
type Config struct {
	// ── Listener ─────────────────────────────────────────────────────
	Host          string        `toml:"host" yaml:"host" env:"HOST"`
	Port          int           `toml:"port" yaml:"port" env:"PORT"`
	ListenRetries int           `toml:"listen_retries" yaml:"listen_retries" env:"LISTEN_RETRIES"`
	AcceptRate    float64       `toml:"accept_rate" yaml:"accept_rate" env:"ACCEPT_RATE"`
	PollInterval  time.Duration `toml:"poll_interval" yaml:"poll_interval" env:"POLL_INTERVAL"`

	// ── Sessions ─────────────────────────────────────────────────────
	MaxSessions int           `toml:"max_sessions" yaml:"max_sessions" env:"MAX_SESSIONS"`
	Timeout     time.Duration `toml:"timeout" yaml:"timeout" env:"TIMEOUT"`
	Banner      string        `toml:"banner" yaml:"banner" env:"BANNER"`
	User        string        `toml:"user" yaml:"user" env:"USER_NAME"`
	Device      string        `toml:"device" yaml:"device" env:"DEVICE"`

	// ── Commands ─────────────────────────────────────────────────────
	Aliases  map[string]string `toml:"aliases" yaml:"aliases" env:"ALIASES"`
	Commands []*StaticCommand  `toml:"commands" yaml:"commands"`

	// ── Output ───────────────────────────────────────────────────────
	Verbose int  `toml:"verbose" yaml:"verbose" env:"VERBOSE"`
	DryRun  bool `toml:"-" yaml:"-"`
}

// StaticCommand is a configured command that answers with fixed text.
type StaticCommand struct {
	Name  string `toml:"name" yaml:"name"`
	Help  string `toml:"help" yaml:"help"`
	Reply string `toml:"reply" yaml:"reply"`
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		ListenRetries: DefaultListenRetries,
		AcceptRate:    DefaultAcceptRate,
		PollInterval:  DefaultPollInterval,
		MaxSessions:   DefaultMaxSessions,
		Timeout:       DefaultTimeout,
		Banner:        DefaultBanner,
	}
}

// Prompt returns "<user>@<device>:~$" when both are set, otherwise
// DefaultPrompt.
func (c *Config) Prompt() string {
	if c.User != "" && c.Device != "" {
		return c.User + "@" + c.Device + ":~$"
	}
	return DefaultPrompt
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return &ncerr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 0-65535",
			Hint:    "use 23 for the standard Telnet port or 0 for any free port",
		}
	}
	if c.MaxSessions < 1 {
		return &ncerr.ConfigError{
			Field:   "max-sessions",
			Value:   c.MaxSessions,
			Message: "must be at least 1",
		}
	}
	if c.Timeout <= 0 {
		return &ncerr.ConfigError{
			Field:   "timeout",
			Value:   c.Timeout,
			Message: "must be positive",
			Hint:    "use a Go duration such as 500ms or 2s",
		}
	}
	if c.PollInterval <= 0 {
		return &ncerr.ConfigError{
			Field:   "poll-interval",
			Value:   c.PollInterval,
			Message: "must be positive",
			Hint:    "use a Go duration such as 20ms",
		}
	}
	if c.AcceptRate < 0 {
		return &ncerr.ConfigError{
			Field:   "accept-rate",
			Value:   c.AcceptRate,
			Message: "must not be negative",
			Hint:    "use 0 to accept sessions as fast as slots free up",
		}
	}
	if c.ListenRetries < 1 {
		return &ncerr.ConfigError{
			Field:   "listen-retries",
			Value:   c.ListenRetries,
			Message: "must be at least 1",
		}
	}
	if (c.User == "") != (c.Device == "") {
		missing, given := "device", "user"
		if c.User == "" {
			missing, given = "user", "device"
		}
		return &ncerr.ConfigError{
			Field:   missing,
			Message: "required with --" + given,
			Hint:    "the prompt is built as <user>@<device>:~$",
		}
	}
	for alias := range c.Aliases {
		if strings.TrimSpace(alias) == "" {
			return &ncerr.ConfigError{
				Field:   "alias",
				Message: "alias name must not be empty",
				Hint:    "use --alias name=command",
			}
		}
	}

	seen := make(map[string]bool, len(c.Commands))
	for i, cmd := range c.Commands {
		if cmd == nil || cmd.Name == "" || strings.TrimSpace(cmd.Name) != cmd.Name {
			name := ""
			if cmd != nil {
				name = cmd.Name
			}
			return &ncerr.ConfigError{
				Field:   fmt.Sprintf("commands[%d].name", i),
				Value:   name,
				Message: "must be non-empty without surrounding spaces",
			}
		}
		if seen[cmd.Name] {
			return &ncerr.ConfigError{
				Field:   fmt.Sprintf("commands[%d].name", i),
				Value:   cmd.Name,
				Message: "defined twice",
			}
		}
		seen[cmd.Name] = true
	}
	return nil
}
