package transport

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"sync"
	"time"

	ncerr "telnetd/internal/errors"
	"telnetd/util"
)

const (
	// DefaultMaxPending bounds how many accepted-but-unclaimed
	// connections the transport holds before dropping new arrivals.
	DefaultMaxPending = 16

	// DefaultMaxBuffered bounds unread input per connection (64 KiB).
	DefaultMaxBuffered = 64 * 1024

	// DefaultReadTimeout applies until SetReadTimeout is called.
	DefaultReadTimeout = time.Second

	// acceptRetryDelay spaces out retries after a temporary accept
	// failure such as EMFILE.
	acceptRetryDelay = 50 * time.Millisecond
)

var (
	_ Transport = (*TCPTransport)(nil)
	_ Conn      = (*tcpConn)(nil)
)

// TCPTransport implements [Transport] over a TCP listener.  A
// background goroutine accepts sockets into a bounded pending queue;
// each handed-out connection gets its own reader goroutine so that
// the caller can poll without blocking.
type TCPTransport struct {
	Host        string // bind host; "" binds every interface
	MaxPending  int
	MaxBuffered int
	Logger      *util.Logger

	mu      sync.Mutex
	ln      net.Listener
	pending []net.Conn
	wg      sync.WaitGroup
}

// NewTCP creates a transport that will bind host once [Listen] is
// called.
func NewTCP(host string, logger *util.Logger) *TCPTransport {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	return &TCPTransport{
		Host:        host,
		MaxPending:  DefaultMaxPending,
		MaxBuffered: DefaultMaxBuffered,
		Logger:      logger,
	}
}

// Listen binds host:port and starts the accept goroutine.
func (t *TCPTransport) Listen(port int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ln != nil {
		return ncerr.ErrAlreadyListening
	}

	addr := util.FormatAddr(t.Host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return ncerr.Wrap("listen", addr, err)
	}
	t.ln = ln

	t.wg.Add(1)
	go t.acceptLoop(ln)
	return nil
}

func (t *TCPTransport) acceptLoop(ln net.Listener) {
	defer t.wg.Done()

	for {
		c, err := ln.Accept()
		if err != nil {
			if util.IsHarmless(err) {
				return
			}
			nerr := ncerr.Wrap("accept", ln.Addr().String(), err)
			if !shouldRetryAccept(nerr) {
				t.Logger.Error("%v", nerr)
				return
			}
			t.Logger.Debug("%v", nerr)
			time.Sleep(acceptRetryDelay)
			continue
		}
		t.enqueue(ln, c)
	}
}

// shouldRetryAccept reports whether the accept loop should keep going
// after err.  A closed listener ends the loop.
func shouldRetryAccept(err error) bool {
	if util.IsHarmless(err) {
		return false
	}
	return ncerr.IsRetryable(err)
}

func (t *TCPTransport) enqueue(ln net.Listener, c net.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.ln != ln:
		// Closed (or re-opened) while this Accept was in flight.
		c.Close()
	case t.MaxPending > 0 && len(t.pending) >= t.MaxPending:
		t.Logger.Warn("pending queue full (%d), dropping %s", len(t.pending), c.RemoteAddr())
		c.Close()
	default:
		t.Logger.Debug("pending connection from %s", c.RemoteAddr())
		t.pending = append(t.pending, c)
	}
}

// Pending reports whether a connection is waiting to be accepted.
func (t *TCPTransport) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) > 0
}

// Accept hands over the oldest pending connection.
func (t *TCPTransport) Accept() (Conn, bool) {
	t.mu.Lock()
	if len(t.pending) == 0 {
		t.mu.Unlock()
		return nil, false
	}
	c := t.pending[0]
	t.pending[0] = nil
	t.pending = t.pending[1:]
	t.mu.Unlock()

	return newTCPConn(c, t.MaxBuffered, t.Logger), true
}

// Addr returns the listener address, or nil when not listening.
func (t *TCPTransport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ln == nil {
		return nil
	}
	return t.ln.Addr()
}

// Close stops the listener, drops pending connections and waits for
// the accept goroutine to exit.
func (t *TCPTransport) Close() error {
	t.mu.Lock()
	ln := t.ln
	t.ln = nil
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	if ln == nil {
		return nil
	}

	err := ln.Close()
	for _, c := range pending {
		c.Close()
	}
	t.wg.Wait()

	if util.IsHarmless(err) {
		return nil
	}
	return ncerr.Wrap("close", ln.Addr().String(), err)
}

// ── Connection ───────────────────────────────────────────────────────

// tcpConn buffers input from a reader goroutine and output in a
// bufio.Writer flushed by the server.
type tcpConn struct {
	conn        net.Conn
	w           *bufio.Writer
	logger      *util.Logger
	maxBuffered int
	remote      string

	mu      sync.Mutex
	in      []byte
	eof     bool // reader goroutine finished
	failed  bool // write failed or Close called
	timeout time.Duration
	ready   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func newTCPConn(c net.Conn, maxBuffered int, logger *util.Logger) *tcpConn {
	if maxBuffered <= 0 {
		maxBuffered = DefaultMaxBuffered
	}
	tc := &tcpConn{
		conn:        c,
		w:           bufio.NewWriter(c),
		logger:      logger,
		maxBuffered: maxBuffered,
		remote:      c.RemoteAddr().String(),
		timeout:     DefaultReadTimeout,
		ready:       make(chan struct{}, 1),
	}
	go tc.readLoop()
	return tc
}

func (c *tcpConn) readLoop() {
	bufp := util.GetBuf()
	defer util.PutBuf(bufp)
	buf := *bufp

	for {
		n, err := c.conn.Read(buf)

		dropped := 0
		c.mu.Lock()
		if n > 0 {
			room := c.maxBuffered - len(c.in)
			if room < 0 {
				room = 0
			}
			if n > room {
				dropped = n - room
				n = room
			}
			c.in = append(c.in, buf[:n]...)
		}
		if err != nil {
			c.eof = true
		}
		c.mu.Unlock()

		if dropped > 0 {
			c.logger.Debug("%s: input buffer full, dropped %d bytes", c.remote, dropped)
		}
		c.signal()

		if err != nil {
			if !util.IsHarmless(err) {
				c.logger.Debug("%v", ncerr.Wrap("read", c.remote, err))
			}
			return
		}
	}
}

func (c *tcpConn) signal() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

func (c *tcpConn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.failed && (!c.eof || len(c.in) > 0)
}

func (c *tcpConn) HasInput() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.in) > 0
}

func (c *tcpConn) SetReadTimeout(d time.Duration) {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

func (c *tcpConn) ReadLine() ([]byte, error) {
	c.mu.Lock()
	timeout := c.timeout
	c.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		c.mu.Lock()
		if i := bytes.IndexByte(c.in, '\n'); i >= 0 {
			line := make([]byte, i+1)
			copy(line, c.in[:i+1])
			c.in = append(c.in[:0], c.in[i+1:]...)
			c.mu.Unlock()
			return line, nil
		}
		if len(c.in) >= c.maxBuffered {
			c.in = c.in[:0]
			c.mu.Unlock()
			return nil, ncerr.ErrLineTooLong
		}
		eof := c.eof || c.failed
		c.mu.Unlock()

		if eof {
			return nil, io.EOF
		}

		select {
		case <-c.ready:
		case <-timer.C:
			return nil, ncerr.ErrTimeout
		}
	}
}

func (c *tcpConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	failed := c.failed
	c.mu.Unlock()
	if failed {
		return 0, ncerr.ErrNotConnected
	}

	// Payloads larger than the free buffer space go straight to the
	// socket, so they need a fresh deadline too.
	if len(p) > c.w.Available() {
		c.armWriteDeadline()
	}
	n, err := c.w.Write(p)
	if err != nil {
		c.markFailed()
	}
	return n, err
}

// Flush pushes buffered output, giving up after the read timeout so a
// peer that stopped reading cannot stall the poll loop.
func (c *tcpConn) Flush() error {
	c.armWriteDeadline()
	if err := c.w.Flush(); err != nil {
		c.markFailed()
		return ncerr.Wrap("write", c.remote, err)
	}
	return nil
}

func (c *tcpConn) Discard() {
	c.mu.Lock()
	c.in = c.in[:0]
	c.mu.Unlock()
	c.w.Reset(c.conn)
}

func (c *tcpConn) Close() error {
	c.closeOnce.Do(func() {
		c.markFailed()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *tcpConn) RemoteAddr() string { return c.remote }

// armWriteDeadline bounds the next socket write by the read timeout.
func (c *tcpConn) armWriteDeadline() {
	c.mu.Lock()
	timeout := c.timeout
	c.mu.Unlock()

	if timeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(timeout)) //nolint:errcheck
	}
}

func (c *tcpConn) markFailed() {
	c.mu.Lock()
	c.failed = true
	c.mu.Unlock()
	c.signal()
}
