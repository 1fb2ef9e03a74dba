package server

import (
	"telnetd/internal/command"
	"telnetd/internal/session"
)

// dispatch resolves line and runs exactly one handler, or reports the
// line as unknown to the issuing session.
func (s *Server) dispatch(sess *session.Session, line string) {
	entry, ok := command.Resolve(s.registry, s.aliases, line)
	if !ok {
		s.metrics.UnknownCommand()
		s.writeLine(sess, "Unknown command: "+line)
		return
	}
	s.metrics.CommandDispatched()
	s.logger.Verbose("session %s: %s", sess.ID, entry.Name)
	entry.Handler(&sessionContext{srv: s, sess: sess}, "")
}
