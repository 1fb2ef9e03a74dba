package server

import (
	"telnetd/internal/command"
	"telnetd/internal/session"
)

// lineEnding terminates every line sent to a client (NVT newline).
const lineEnding = "\r\n"

// write sends text and flushes.  Failures are logged only; a broken
// connection is reaped on the next cycle.
func (s *Server) write(sess *session.Session, text string) {
	n, err := sess.Conn.Write([]byte(text))
	s.metrics.BytesSent(int64(n))
	if err == nil {
		err = sess.Conn.Flush()
	}
	if err != nil {
		s.logger.Debug("session %s: %v", sess.ID, err)
	}
}

func (s *Server) writeLine(sess *session.Session, text string) {
	s.write(sess, text+lineEnding)
}

func (s *Server) showBanner(sess *session.Session) {
	s.writeLine(sess, s.cfg.Banner)
}

func (s *Server) showPrompt(sess *session.Session) {
	s.write(sess, s.cfg.Prompt+" ")
}

// sessionContext is the command.Context handed to handlers.
type sessionContext struct {
	srv  *Server
	sess *session.Session
}

var _ command.Context = (*sessionContext)(nil)

func (c *sessionContext) Session() *session.Session { return c.sess }
func (c *sessionContext) Print(text string)         { c.srv.write(c.sess, text) }
func (c *sessionContext) Println(text string)       { c.srv.writeLine(c.sess, text) }
func (c *sessionContext) Commands() []command.Entry { return c.srv.registry.Entries() }

// Disconnect marks the session Closing; the line handler releases it
// after the handler returns.
func (c *sessionContext) Disconnect() {
	if c.sess.State == session.Active {
		c.sess.State = session.Closing
	}
}
