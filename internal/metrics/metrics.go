// Package metrics provides lightweight, lock-free counters and gauges
// for tracking runtime statistics of a console server.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a server run.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	sessionsActive   atomic.Int64
	sessionsTotal    atomic.Int64
	acceptsDeferred  atomic.Int64
	acceptsThrottled atomic.Int64
	commandsTotal    atomic.Int64
	unknownCommands  atomic.Int64
	bytesIn          atomic.Int64
	bytesOut         atomic.Int64
	errorsTotal      atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Session metrics ──────────────────────────────────────────────────

// SessionOpened increments both the active and total counters.
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.sessionsActive.Add(1)
	c.sessionsTotal.Add(1)
}

// SessionClosed decrements the active session counter.
func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.sessionsActive.Add(-1)
}

// ActiveSessions returns the current number of open sessions.
func (c *Collector) ActiveSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsActive.Load()
}

// TotalSessions returns the lifetime session count.
func (c *Collector) TotalSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsTotal.Load()
}

// AcceptDeferred records a service cycle that left a pending
// connection waiting because every slot was occupied.
func (c *Collector) AcceptDeferred() {
	if c == nil {
		return
	}
	c.acceptsDeferred.Add(1)
}

// AcceptThrottled records a pending connection held back by the
// accept-rate limiter.
func (c *Collector) AcceptThrottled() {
	if c == nil {
		return
	}
	c.acceptsThrottled.Add(1)
}

// DeferredAccepts returns how many cycles found no free slot.
func (c *Collector) DeferredAccepts() int64 {
	if c == nil {
		return 0
	}
	return c.acceptsDeferred.Load()
}

// ── Command metrics ──────────────────────────────────────────────────

// CommandDispatched records a line that resolved to a handler.
func (c *Collector) CommandDispatched() {
	if c == nil {
		return
	}
	c.commandsTotal.Add(1)
}

// UnknownCommand records a line that matched neither a command nor
// an alias.
func (c *Collector) UnknownCommand() {
	if c == nil {
		return
	}
	c.unknownCommands.Add(1)
}

// Commands returns the number of dispatched commands.
func (c *Collector) Commands() int64 {
	if c == nil {
		return 0
	}
	return c.commandsTotal.Load()
}

// UnknownCommands returns the number of unresolved lines.
func (c *Collector) UnknownCommands() int64 {
	if c == nil {
		return 0
	}
	return c.unknownCommands.Load()
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesReceived records n bytes of command input.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// BytesSent records n bytes written to sessions.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	SessionsActive   int64  `json:"sessions_active"`
	SessionsTotal    int64  `json:"sessions_total"`
	AcceptsDeferred  int64  `json:"accepts_deferred"`
	AcceptsThrottled int64  `json:"accepts_throttled"`
	Commands         int64  `json:"commands"`
	UnknownCommands  int64  `json:"unknown_commands"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:           time.Since(c.startTime).Truncate(time.Second).String(),
		SessionsActive:   c.sessionsActive.Load(),
		SessionsTotal:    c.sessionsTotal.Load(),
		AcceptsDeferred:  c.acceptsDeferred.Load(),
		AcceptsThrottled: c.acceptsThrottled.Load(),
		Commands:         c.commandsTotal.Load(),
		UnknownCommands:  c.unknownCommands.Load(),
		BytesIn:          c.bytesIn.Load(),
		BytesOut:         c.bytesOut.Load(),
		ErrorsTotal:      c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
