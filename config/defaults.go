package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultHost binds every interface.
	DefaultHost = ""

	// DefaultPort is the standard Telnet port.
	DefaultPort = 23

	// DefaultMaxSessions is the number of session slots.
	DefaultMaxSessions = 4

	// DefaultTimeout bounds a single blocking line read.
	DefaultTimeout = time.Second

	// DefaultPollInterval is the pause between service cycles.
	DefaultPollInterval = 20 * time.Millisecond

	// DefaultAcceptRate is new sessions per second; 0 disables the
	// limiter.
	DefaultAcceptRate = 0.0

	// DefaultBanner greets every new session.
	DefaultBanner = "Welcome to the Telnet console."

	// DefaultPrompt is used until a user/device pair is configured.
	DefaultPrompt = "root@esp:~$"

	// DefaultListenRetries is how many times a busy port is retried
	// at start-up.
	DefaultListenRetries = 1

	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "TELNETD_"
)
