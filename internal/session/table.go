package session

import "telnetd/internal/transport"

// Table is a fixed-capacity set of session slots addressed by index.
// It is not safe for concurrent use; the server polls it from a
// single goroutine.
type Table struct {
	slots []*Session
}

// NewTable creates a table with capacity slots (at least one).
func NewTable(capacity int) *Table {
	if capacity < 1 {
		capacity = 1
	}
	return &Table{slots: make([]*Session, capacity)}
}

// Cap returns the fixed number of slots.
func (t *Table) Cap() int { return len(t.slots) }

// FindFree returns the lowest free slot index.
func (t *Table) FindFree() (int, bool) {
	for i, s := range t.slots {
		if s == nil {
			return i, true
		}
	}
	return -1, false
}

// Claim places a new session for conn in slot i.  It returns nil if
// the slot is out of range or occupied; an existing session is never
// displaced.
func (t *Table) Claim(i int, conn transport.Conn) *Session {
	if i < 0 || i >= len(t.slots) || t.slots[i] != nil {
		return nil
	}
	s := New(i, conn)
	t.slots[i] = s
	return s
}

// Get returns the session in slot i, or nil when the slot is free.
func (t *Table) Get(i int) *Session {
	if i < 0 || i >= len(t.slots) {
		return nil
	}
	return t.slots[i]
}

// Release purges buffered input and unflushed output, closes the
// connection, clears the line buffer and frees slot i.  It returns
// the released session, or nil when the slot was already free.
func (t *Table) Release(i int) (*Session, error) {
	s := t.Get(i)
	if s == nil {
		return nil, nil
	}
	err := s.close()
	s.ClearLine()
	s.State = Closed
	t.slots[i] = nil
	return s, err
}

// Active counts sessions in the Active state.
func (t *Table) Active() int {
	n := 0
	for _, s := range t.slots {
		if s != nil && s.State == Active {
			n++
		}
	}
	return n
}

// Occupied counts claimed slots regardless of state.
func (t *Table) Occupied() int {
	n := 0
	for _, s := range t.slots {
		if s != nil {
			n++
		}
	}
	return n
}
