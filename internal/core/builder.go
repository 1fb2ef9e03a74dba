package core

import (
	"fmt"
	"os"
	"sort"

	"telnetd/config"
	"telnetd/internal/command"
	"telnetd/internal/metrics"
	"telnetd/internal/server"
	"telnetd/internal/transport"
	"telnetd/util"
)

// Build constructs the appropriate Mode from the given configuration.
// The configuration is assumed to be validated.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	m := metrics.New()
	srv, err := buildServer(cfg, logger, m)
	if err != nil {
		return nil, err
	}

	if cfg.DryRun {
		return &DryRunMode{
			Config: cfg,
			Server: srv,
			Out:    os.Stdout,
		}, nil
	}

	return &ServeMode{
		Server:       srv,
		Port:         cfg.Port,
		PollInterval: cfg.PollInterval,
		Retries:      cfg.ListenRetries,
		Logger:       logger,
		Metrics:      m,
	}, nil
}

// buildServer wires a TCP transport into a console server and
// registers the configured commands and aliases.
func buildServer(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (*server.Server, error) {
	tr := transport.NewTCP(cfg.Host, logger)

	srv := server.New(server.Config{
		Banner:      cfg.Banner,
		Prompt:      cfg.Prompt(),
		Timeout:     cfg.Timeout,
		MaxSessions: cfg.MaxSessions,
		AcceptRate:  cfg.AcceptRate,
	}, tr, logger, m)

	for _, c := range cfg.Commands {
		if err := srv.AddCommand(c.Name, c.Help, command.Reply(c.Reply)); err != nil {
			return nil, fmt.Errorf("config command: %w", err)
		}
	}

	// Aliases last: SetAlias warns about targets not yet registered.
	for _, alias := range sortedKeys(cfg.Aliases) {
		if err := srv.SetAlias(alias, cfg.Aliases[alias]); err != nil {
			return nil, fmt.Errorf("config alias %q: %w", alias, err)
		}
	}
	return srv, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
