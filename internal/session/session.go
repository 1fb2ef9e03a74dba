// Package session represents a single console connection and the
// fixed-capacity slot table that owns every live session.
//
// A Session binds a borrowed transport connection to its lifecycle
// state and line buffer.  The Table is an arena indexed by slot
// number; a nil entry is a free slot.
package session

import (
	"time"

	"github.com/google/uuid"

	"telnetd/internal/transport"
)

// State is the lifecycle position of a session.
type State int

const (
	// Connecting: a slot was claimed but the banner is not out yet.
	Connecting State = iota
	// Active: the session is polled for input every cycle.
	Active
	// Closing: a handler asked for termination; release is underway.
	Closing
	// Closed: the connection is closed and the slot is free.
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Active:
		return "active"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session encapsulates the runtime state of one accepted connection.
type Session struct {
	ID     string // random, for log correlation
	Slot   int
	Conn   transport.Conn
	Remote string
	Opened time.Time
	State  State

	line   []byte
	closed bool
}

// New creates a Connecting session for conn in the given slot.
func New(slot int, conn transport.Conn) *Session {
	return &Session{
		ID:     uuid.NewString(),
		Slot:   slot,
		Conn:   conn,
		Remote: conn.RemoteAddr(),
		Opened: time.Now(),
		State:  Connecting,
	}
}

// SetLine stores raw in the session's line buffer, replacing any
// previous content.
func (s *Session) SetLine(raw []byte) {
	s.line = append(s.line[:0], raw...)
}

// Line returns the buffered line as received, terminator included.
// The line handler parses and logs from it.
func (s *Session) Line() string { return string(s.line) }

// ClearLine empties the line buffer.
func (s *Session) ClearLine() { s.line = s.line[:0] }

// close purges and closes the connection the first time it is called.
func (s *Session) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.Conn.Discard()
	return s.Conn.Close()
}
