package server

import (
	"time"

	"telnetd/internal/session"
	"telnetd/util"
)

// reap releases every slot whose connection has gone away.
func (s *Server) reap() {
	for i := 0; i < s.table.Cap(); i++ {
		sess := s.table.Get(i)
		if sess != nil && !sess.Conn.Connected() {
			s.logger.Verbose("session %s from %s disconnected", sess.ID, sess.Remote)
			s.release(i)
		}
	}
}

// accept promotes one pending connection into the lowest free slot.
// With no free slot, or when the limiter says no, the connection stays
// queued in the transport for the next cycle.
func (s *Server) accept() {
	if !s.tr.Pending() {
		return
	}
	slot, ok := s.table.FindFree()
	if !ok {
		s.metrics.AcceptDeferred()
		s.logger.Debug("accept deferred: %d/%d slots occupied", s.table.Occupied(), s.table.Cap())
		return
	}
	if s.limiter != nil && !s.limiter.Allow() {
		s.metrics.AcceptThrottled()
		return
	}
	conn, ok := s.tr.Accept()
	if !ok {
		return
	}

	conn.SetReadTimeout(s.cfg.Timeout)
	sess := s.table.Claim(slot, conn)
	conn.Discard()
	s.showBanner(sess)
	s.showPrompt(sess)
	sess.State = session.Active

	s.metrics.SessionOpened()
	s.logger.Verbose("session %s from %s in slot %d", sess.ID, sess.Remote, slot)
}

// release frees slot i, if occupied.
func (s *Server) release(i int) {
	sess, err := s.table.Release(i)
	if sess == nil {
		return
	}
	if err != nil && !util.IsHarmless(err) {
		s.logger.Debug("session %s: close: %v", sess.ID, err)
	}
	s.metrics.SessionClosed()
	s.logger.Verbose("session %s released slot %d after %s",
		sess.ID, i, time.Since(sess.Opened).Truncate(time.Millisecond))
}
