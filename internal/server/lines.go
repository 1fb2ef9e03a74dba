package server

import (
	"errors"
	"io"
	"strings"

	"telnetd/internal/session"
)

// serveLines reads and dispatches at most one line per Active session,
// in ascending slot order.
func (s *Server) serveLines() {
	for i := 0; i < s.table.Cap(); i++ {
		sess := s.table.Get(i)
		if sess == nil || sess.State != session.Active || !sess.Conn.HasInput() {
			continue
		}

		raw, err := sess.Conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.release(i)
				continue
			}
			// Unterminated fragment or oversized line: nothing to
			// dispatch this cycle.
			s.logger.Debug("session %s: %v", sess.ID, err)
			continue
		}
		s.metrics.BytesReceived(int64(len(raw)))

		sess.SetLine(raw)
		line := parseLine(sess.Line())
		s.logger.Debug("received command [%s] from %s (raw %q)", line, sess.Remote, sess.Line())
		s.dispatch(sess, line)

		if sess.State != session.Active {
			s.release(i)
			continue
		}
		sess.Conn.Discard()
		sess.ClearLine()
		s.showPrompt(sess)
	}
}

// parseLine drops the terminator and one preceding carriage return,
// then trims surrounding whitespace.
func parseLine(raw string) string {
	line := strings.TrimSuffix(raw, "\n")
	line = strings.TrimSuffix(line, "\r")
	return strings.TrimSpace(line)
}
