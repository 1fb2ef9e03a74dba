// Package command holds the console's command registry, its alias
// table and the built-in commands.
//
// Handlers never capture the server that runs them.  They receive an
// explicit Context for the session that issued the line, which keeps
// them testable against a fake and free of hidden state.
package command

import (
	"strings"

	ncerr "telnetd/internal/errors"
	"telnetd/internal/session"
)

// Context is what a handler may do to the session that invoked it.
type Context interface {
	// Session returns the issuing session.
	Session() *session.Session

	// Print writes s and flushes.
	Print(s string)

	// Println writes s followed by a line terminator and flushes.
	Println(s string)

	// Commands returns the registry entries in registration order.
	Commands() []Entry

	// Disconnect closes the session and frees its slot once the
	// handler returns.
	Disconnect()
}

// HandlerFunc runs a resolved command.  args is the opaque argument
// string; the dispatcher always passes "".
type HandlerFunc func(c Context, args string)

// Entry is one registered command.
type Entry struct {
	Name    string
	Help    string
	Handler HandlerFunc
}

// Registry is an append-only, ordered set of commands with unique
// names.  It is not safe for concurrent mutation; register everything
// before serving.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add registers a command.  The name must be non-empty, carry no
// surrounding whitespace (input is trimmed before lookup) and not be
// registered already.
func (r *Registry) Add(name, help string, h HandlerFunc) error {
	if name == "" || strings.TrimSpace(name) != name || h == nil {
		return ncerr.WrapCommand(name, ncerr.ErrInvalidCommand)
	}
	if _, dup := r.index[name]; dup {
		return ncerr.WrapCommand(name, ncerr.ErrDuplicateCommand)
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, Entry{Name: name, Help: help, Handler: h})
	return nil
}

// Lookup returns the entry registered under exactly name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	i, ok := r.index[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Entries returns a copy of all entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.entries) }
