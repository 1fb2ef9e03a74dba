package util

import (
	"errors"
	"io"
	"net"
)

// DefaultBufSize is the chunk size used for connection reads (4 KiB).
// Console input is line-oriented, so small chunks are plenty.
const DefaultBufSize = 4 * 1024

// IsHarmless returns true for errors that are expected when a peer
// hangs up or a connection is torn down locally.
func IsHarmless(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	// net.OpError wrapping "use of closed network connection"
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}
