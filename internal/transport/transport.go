// Package transport provides the connection layer the console server
// polls.  Transports handle the "how" of data movement (listening,
// accepting, buffering bytes) independent of what the bytes mean,
// which is the server's job.
//
// Every method is non-blocking except [Conn.ReadLine], which waits at
// most the read timeout configured with [Conn.SetReadTimeout].  That
// lets a single goroutine poll many connections.
package transport

import (
	"net"
	"time"
)

// Transport accepts inbound connections on a port.  Connections that
// have arrived but were not yet taken with Accept stay pending; the
// transport decides whether and when to drop them.
type Transport interface {
	// Listen starts accepting connections on port.
	Listen(port int) error

	// Pending reports whether at least one connection is waiting.
	Pending() bool

	// Accept hands over the oldest pending connection, if any.
	Accept() (Conn, bool)

	// Addr returns the bound address, or nil before Listen.
	Addr() net.Addr

	// Close stops listening and drops every pending connection.
	// Connections already handed out by Accept are not affected.
	Close() error
}

// Conn is one accepted connection.  The server borrows it for the
// session's lifetime and calls Close exactly once.
type Conn interface {
	// Connected is false once the peer has hung up and all of its
	// buffered input has been consumed, or a write has failed.
	Connected() bool

	// HasInput reports whether unread input is buffered.
	HasInput() bool

	// SetReadTimeout bounds how long ReadLine waits for a terminator.
	SetReadTimeout(d time.Duration)

	// ReadLine returns the next line including its '\n'.  It returns
	// errors.ErrTimeout when no complete line arrived in time (the
	// partial input stays buffered) and io.EOF once the peer is gone.
	ReadLine() ([]byte, error)

	// Write buffers p for sending; Flush pushes it to the peer.
	Write(p []byte) (int, error)
	Flush() error

	// Discard drops buffered unread input and unflushed output.
	Discard()

	Close() error
	RemoteAddr() string
}
