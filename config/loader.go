package config

// loader.go - configuration loading from files and the environment.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables, TELNETD_*  (LoadFromEnv)
//   3. Config file, --config  (LoadFile)
//   4. Defaults   (defaults.go)

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	ncerr "telnetd/internal/errors"
)

// Load returns defaults overlaid with the file at path (if non-empty)
// and then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigPathFromEnv returns TELNETD_CONFIG, the fallback for --config.
func ConfigPathFromEnv() string {
	return os.Getenv(EnvPrefix + "CONFIG")
}

// ── File ─────────────────────────────────────────────────────────────

// LoadFile decodes a TOML or YAML file onto cfg, chosen by extension.
// Keys absent from the file keep their current value; unknown keys are
// an error.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return decodeTOML(path, data, cfg)
	case ".yaml", ".yml":
		return decodeYAML(path, data, cfg)
	default:
		return &ncerr.ConfigError{
			Field:   "config",
			Value:   path,
			Message: fmt.Sprintf("unsupported file extension %q", ext),
			Hint:    "use a .toml, .yaml or .yml file",
		}
	}
}

func decodeTOML(path string, data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return &ncerr.ConfigError{
			Field:   "config",
			Value:   path,
			Message: fmt.Sprintf("unknown key %q", undecoded[0].String()),
		}
	}
	return nil
}

func decodeYAML(path string, data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// An empty document decodes to io.EOF; nothing to apply.
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ── Environment ──────────────────────────────────────────────────────

// LoadFromEnv overlays TELNETD_* environment variables onto cfg.  Unset
// variables leave the existing value alone.  Call it BEFORE CLI flag
// parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
