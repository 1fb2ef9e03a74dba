package core

import (
	"context"
	"errors"
	"net"
	"time"

	"telnetd/config"
	ncerr "telnetd/internal/errors"
	"telnetd/internal/metrics"
	"telnetd/internal/retry"
	"telnetd/internal/server"
	"telnetd/util"
)

// ServeMode binds the console's port and drives its service cycle from
// a ticker until the context is cancelled.  Service runs on the
// calling goroutine only.
type ServeMode struct {
	Server       *server.Server
	Port         int
	PollInterval time.Duration
	Retries      int // listen attempts while the port is busy
	Logger       *util.Logger
	Metrics      *metrics.Collector

	// Ready, when set, is called with the bound address once the
	// listener is up.
	Ready func(addr net.Addr)
}

// Run listens, serves until ctx is done, then stops the server.
func (m *ServeMode) Run(ctx context.Context) error {
	if err := m.listen(ctx); err != nil {
		m.Metrics.RecordError(err.Error())
		return err
	}
	defer func() {
		if err := m.Server.Stop(); err != nil {
			m.Logger.Debug("stop: %v", err)
		}
	}()

	if m.Ready != nil {
		m.Ready(m.Server.Addr())
	}

	interval := m.PollInterval
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.Server.Service()
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// listen starts the server, retrying with backoff while the port is
// busy.
func (m *ServeMode) listen(ctx context.Context) error {
	if m.Retries <= 1 {
		return m.Server.Start(m.Port)
	}

	b := retry.ListenBackoff(m.Retries)
	b.OnRetry = func(attempt int, err error, wait time.Duration) {
		m.Logger.Warn("listen attempt %d/%d failed: %v (retrying in %s)",
			attempt, m.Retries, err, wait.Truncate(time.Millisecond))
	}
	return b.Do(ctx, func(int) error {
		err := m.Server.Start(m.Port)
		if errors.Is(err, ncerr.ErrAlreadyListening) {
			return retry.Permanent(err)
		}
		return err
	})
}
