// Package server implements the console protocol: a fixed pool of
// session slots fed by a transport, a line reader per slot, and a
// dispatcher that routes each line through the command registry.
//
// The server is driven from outside.  Service performs one cycle and
// returns; the caller invokes it repeatedly from a single goroutine.
// Nothing in this package starts a goroutine.
package server

import (
	"net"
	"time"

	"golang.org/x/time/rate"

	"telnetd/config"
	"telnetd/internal/command"
	ncerr "telnetd/internal/errors"
	"telnetd/internal/metrics"
	"telnetd/internal/session"
	"telnetd/internal/transport"
	"telnetd/util"
)

// Config holds the per-run settings of a Server.
type Config struct {
	Banner      string
	Prompt      string        // shown with one trailing space
	Timeout     time.Duration // per-session read timeout
	MaxSessions int           // fixed at construction
	AcceptRate  float64       // new sessions per second, 0 = unlimited
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		Banner:      config.DefaultBanner,
		Prompt:      config.DefaultPrompt,
		Timeout:     config.DefaultTimeout,
		MaxSessions: config.DefaultMaxSessions,
		AcceptRate:  config.DefaultAcceptRate,
	}
}

// Server owns the slot table, registry and alias table for one
// console.  It is not safe for concurrent use.
type Server struct {
	cfg      Config
	tr       transport.Transport
	table    *session.Table
	registry *command.Registry
	aliases  *command.Aliases
	limiter  *rate.Limiter
	logger   *util.Logger
	metrics  *metrics.Collector

	listening bool
}

// New creates a server on top of tr with help and exit registered.
// A nil logger discards everything below errors; m may be nil.
func New(cfg Config, tr transport.Transport, logger *util.Logger, m *metrics.Collector) *Server {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	if cfg.MaxSessions < 1 {
		cfg.MaxSessions = config.DefaultMaxSessions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultTimeout
	}
	if cfg.Prompt == "" {
		cfg.Prompt = config.DefaultPrompt
	}

	s := &Server{
		cfg:      cfg,
		tr:       tr,
		table:    session.NewTable(cfg.MaxSessions),
		registry: command.NewRegistry(),
		aliases:  command.NewAliases(),
		logger:   logger,
		metrics:  m,
	}
	if cfg.AcceptRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), 1)
	}
	// Cannot fail on an empty registry.
	_ = command.RegisterBuiltins(s.registry)
	return s
}

// ── Configuration ────────────────────────────────────────────────────

// AddCommand registers a command after the built-ins.
func (s *Server) AddCommand(name, help string, h command.HandlerFunc) error {
	if err := s.registry.Add(name, help, h); err != nil {
		return err
	}
	s.logger.Debug("registered command %q", name)
	return nil
}

// SetAlias makes alias resolve to the command named target.  The
// target need not exist yet.
func (s *Server) SetAlias(alias, target string) error {
	if err := s.aliases.Set(alias, target); err != nil {
		return err
	}
	if _, ok := s.registry.Lookup(target); !ok {
		s.logger.Warn("alias %q points to unknown command %q", alias, target)
	}
	return nil
}

// SetPrompt sets the prompt to "<user>@<device>:~$".
func (s *Server) SetPrompt(user, device string) {
	s.cfg.Prompt = user + "@" + device + ":~$"
}

// SetBanner replaces the text shown to new sessions.
func (s *Server) SetBanner(banner string) { s.cfg.Banner = banner }

// SetTimeout changes the read timeout for new and open sessions.
// Non-positive values are ignored.
func (s *Server) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	s.cfg.Timeout = d
	for i := 0; i < s.table.Cap(); i++ {
		if sess := s.table.Get(i); sess != nil {
			sess.Conn.SetReadTimeout(d)
		}
	}
}

// Config returns the current settings.
func (s *Server) Config() Config { return s.cfg }

// Commands returns registered commands in registration order.
func (s *Server) Commands() []command.Entry { return s.registry.Entries() }

// Lookup finds a registered command by exact name.
func (s *Server) Lookup(name string) (command.Entry, bool) { return s.registry.Lookup(name) }

// Aliases returns the alias table.
func (s *Server) Aliases() *command.Aliases { return s.aliases }

// ── Lifecycle ────────────────────────────────────────────────────────

// Start makes the transport listen on port.
func (s *Server) Start(port int) error {
	if s.listening {
		return ncerr.ErrAlreadyListening
	}
	if err := s.tr.Listen(port); err != nil {
		return err
	}
	s.listening = true
	s.logger.Info("Telnet server started on %s (%d slots)", s.Addr(), s.table.Cap())
	return nil
}

// Stop closes every session and the transport.
func (s *Server) Stop() error {
	if !s.listening {
		return ncerr.ErrNotListening
	}
	for i := 0; i < s.table.Cap(); i++ {
		s.release(i)
	}
	s.listening = false
	err := s.tr.Close()
	s.logger.Info("Telnet server stopped")
	s.logger.Verbose("metrics: %s", s.metrics.JSON())
	return err
}

// Listening reports whether Start succeeded and Stop was not called.
func (s *Server) Listening() bool { return s.listening }

// Addr returns the transport's listen address, or nil.
func (s *Server) Addr() net.Addr { return s.tr.Addr() }

// Active returns the number of Active sessions.
func (s *Server) Active() int { return s.table.Active() }

// Service runs one cycle: reap disconnected sessions, accept at most
// one pending connection, then serve one line per session in slot
// order.  It does nothing before Start.
func (s *Server) Service() {
	if !s.listening {
		return
	}
	s.reap()
	s.accept()
	s.serveLines()
}
