// Package transporttest provides in-memory implementations of the
// transport interfaces for tests.  They never block: ReadLine returns
// errors.ErrTimeout immediately when no full line is buffered.
package transporttest

import (
	"bytes"
	"io"
	"net"
	"time"

	ncerr "telnetd/internal/errors"
	"telnetd/internal/transport"
)

var (
	_ transport.Transport = (*Transport)(nil)
	_ transport.Conn      = (*Conn)(nil)
)

// ── Transport ────────────────────────────────────────────────────────

// Transport is a fake listener whose pending queue is filled by Dial.
type Transport struct {
	ListenErr error // returned by Listen when set

	port      int
	listening bool
	queue     []*Conn
}

// Dial queues a new pending connection from remote and returns the
// server side of it.
func (t *Transport) Dial(remote string) *Conn {
	c := NewConn(remote)
	t.queue = append(t.queue, c)
	return c
}

func (t *Transport) Listen(port int) error {
	if t.ListenErr != nil {
		return t.ListenErr
	}
	if t.listening {
		return ncerr.ErrAlreadyListening
	}
	t.port = port
	t.listening = true
	return nil
}

// Listening reports whether Listen succeeded and Close was not called.
func (t *Transport) Listening() bool { return t.listening }

func (t *Transport) Pending() bool { return t.listening && len(t.queue) > 0 }

func (t *Transport) Accept() (transport.Conn, bool) {
	if !t.Pending() {
		return nil, false
	}
	c := t.queue[0]
	t.queue = t.queue[1:]
	return c, true
}

func (t *Transport) Addr() net.Addr {
	if !t.listening {
		return nil
	}
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: t.port}
}

func (t *Transport) Close() error {
	t.listening = false
	for _, c := range t.queue {
		c.Close()
	}
	t.queue = nil
	return nil
}

// ── Conn ─────────────────────────────────────────────────────────────

// Conn is a scripted connection.  Type feeds client input; Output
// returns everything the server flushed.
type Conn struct {
	remote   string
	input    []byte
	unsent   bytes.Buffer
	sent     bytes.Buffer
	hungUp   bool
	closes   int
	discards int
	timeout  time.Duration
}

// NewConn creates an unattached connection from remote.
func NewConn(remote string) *Conn {
	return &Conn{remote: remote}
}

// Type appends client input.
func (c *Conn) Type(s string) { c.input = append(c.input, s...) }

// HangUp simulates the peer closing its side.
func (c *Conn) HangUp() { c.hungUp = true }

// Output returns all flushed output so far.
func (c *Conn) Output() string { return c.sent.String() }

// TakeOutput returns flushed output and resets it.
func (c *Conn) TakeOutput() string {
	s := c.sent.String()
	c.sent.Reset()
	return s
}

// Unflushed returns output written but not yet flushed.
func (c *Conn) Unflushed() string { return c.unsent.String() }

// Closes returns how many times Close was called.
func (c *Conn) Closes() int { return c.closes }

// Discards returns how many times Discard was called.
func (c *Conn) Discards() int { return c.discards }

// ReadTimeout returns the last value passed to SetReadTimeout.
func (c *Conn) ReadTimeout() time.Duration { return c.timeout }

func (c *Conn) Connected() bool {
	return c.closes == 0 && (!c.hungUp || len(c.input) > 0)
}

func (c *Conn) HasInput() bool { return len(c.input) > 0 }

func (c *Conn) SetReadTimeout(d time.Duration) { c.timeout = d }

func (c *Conn) ReadLine() ([]byte, error) {
	if i := bytes.IndexByte(c.input, '\n'); i >= 0 {
		line := append([]byte(nil), c.input[:i+1]...)
		c.input = c.input[i+1:]
		return line, nil
	}
	if c.hungUp || c.closes > 0 {
		return nil, io.EOF
	}
	return nil, ncerr.ErrTimeout
}

func (c *Conn) Write(p []byte) (int, error) {
	if c.closes > 0 {
		return 0, ncerr.ErrNotConnected
	}
	return c.unsent.Write(p)
}

func (c *Conn) Flush() error {
	if c.closes > 0 {
		return ncerr.ErrNotConnected
	}
	c.sent.Write(c.unsent.Bytes())
	c.unsent.Reset()
	return nil
}

func (c *Conn) Discard() {
	c.discards++
	c.input = nil
	c.unsent.Reset()
}

func (c *Conn) Close() error {
	c.closes++
	return nil
}

func (c *Conn) RemoteAddr() string { return c.remote }
