// Package core is the orchestration layer.  It composes the transport
// and the console server into complete operational modes and provides
// a builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  session  →  command  →  server  →  core  →  cmd (CLI)
package core

import "context"

// Mode represents a complete operational mode of telnetd (serve or
// dry-run).  Each mode owns its full lifecycle from start-up to
// teardown.
type Mode interface {
	Run(ctx context.Context) error
}
