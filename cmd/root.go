// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"telnetd/config"
	"telnetd/internal/core"
	"telnetd/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X telnetd/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

type action int

const (
	actionRun action = iota
	actionHelp
	actionVersion
)

// Execute parses args and runs the appropriate telnetd mode.
func Execute(ctx context.Context, args []string) error {
	cfg, fs, act, err := parseArgs(args)
	if err != nil {
		return err
	}

	switch act {
	case actionHelp:
		printUsage(fs)
		return nil
	case actionVersion:
		fmt.Printf("telnetd %s\n", version)
		return nil
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// parseArgs layers defaults, the config file, the environment and
// finally the command line into one Config.
func parseArgs(args []string) (*config.Config, *flag.FlagSet, action, error) {
	// ── config file (pre-scan) ───────────────────────────────────
	path := scanConfigPath(args)
	if path == "" {
		path = config.ConfigPathFromEnv()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, actionRun, err
	}

	fs := flag.NewFlagSet("telnetd", flag.ContinueOnError)

	// ── listener ─────────────────────────────────────────────────
	fs.StringVar(&cfg.Host, "host", cfg.Host, "Bind address (empty = all interfaces)")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "Listen port")
	fs.IntVar(&cfg.ListenRetries, "listen-retries", cfg.ListenRetries, "Bind attempts while the port is busy")
	fs.Float64Var(&cfg.AcceptRate, "accept-rate", cfg.AcceptRate, "Max new sessions per second (0 = unlimited)")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Pause between service cycles")

	// ── sessions ─────────────────────────────────────────────────
	fs.IntVarP(&cfg.MaxSessions, "max-sessions", "m", cfg.MaxSessions, "Number of session slots")
	fs.DurationVarP(&cfg.Timeout, "timeout", "w", cfg.Timeout, "Line read timeout")
	fs.StringVar(&cfg.Banner, "banner", cfg.Banner, "Text shown to new sessions")
	fs.StringVar(&cfg.User, "user", cfg.User, "Prompt user name (with --device)")
	fs.StringVar(&cfg.Device, "device", cfg.Device, "Prompt device name (with --user)")

	// ── commands ─────────────────────────────────────────────────
	var aliases map[string]string
	fs.StringToStringVarP(&aliases, "alias", "a", nil, "Command alias name=command (repeatable)")

	// ── output ───────────────────────────────────────────────────
	var verbosity int
	fs.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Validate configuration, print it and exit")

	var configPath string
	fs.StringVarP(&configPath, "config", "c", path, "Config file (.toml, .yaml)")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return nil, fs, actionRun, err
	}

	if showHelp {
		return cfg, fs, actionHelp, nil
	}
	if showVersion {
		return cfg, fs, actionVersion, nil
	}
	if fs.NArg() > 0 {
		return nil, fs, actionRun, fmt.Errorf("unexpected argument %q (use --help for usage)", fs.Arg(0))
	}

	if fs.Changed("verbose") {
		cfg.Verbose = verbosity
	}
	if len(aliases) > 0 {
		if cfg.Aliases == nil {
			cfg.Aliases = make(map[string]string, len(aliases))
		}
		for a, target := range aliases {
			cfg.Aliases[a] = target
		}
	}
	return cfg, fs, actionRun, nil
}

// scanConfigPath finds --config/-c before the full flag set exists,
// so that file values can become flag defaults.
func scanConfigPath(args []string) string {
	pre := flag.NewFlagSet("telnetd", flag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.SetOutput(io.Discard)
	pre.Usage = func() {}

	var path string
	pre.StringVarP(&path, "config", "c", "", "")
	pre.BoolP("help", "h", false, "")
	_ = pre.Parse(args) // real errors surface in the full parse
	return path
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `telnetd – interactive line-protocol console v%s

Serves a Telnet-style command console to a fixed number of sessions.

Usage:
  telnetd [options]

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Configuration precedence (highest wins): flags, TELNETD_* environment,
config file, built-in defaults.

Examples:
  telnetd -p 2323                               Serve on port 2323
  telnetd -m 8 --user admin --device gw         8 slots, admin@gw:~$ prompt
  telnetd -a q=exit -a ?=help                   Add aliases
  telnetd -c /etc/telnetd.toml --dry-run        Check a config file
`)
}
