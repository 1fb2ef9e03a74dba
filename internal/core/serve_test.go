package core

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"telnetd/config"
	ncerr "telnetd/internal/errors"
	"telnetd/util"
)

const (
	greeting = "Welcome to the Telnet console.\r\nroot@esp:~$ "
	prompt   = "root@esp:~$ "
)

// startServe builds a ServeMode from cfg on a free loopback port and
// runs it until the test ends.
func startServe(t *testing.T, cfg *config.Config) string {
	t.Helper()
	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	cfg.PollInterval = 5 * time.Millisecond
	cfg.Timeout = 200 * time.Millisecond

	mode, err := Build(cfg, util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}
	sm := mode.(*ServeMode)
	ready := make(chan net.Addr, 1)
	sm.Ready = func(a net.Addr) { ready <- a }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sm.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run: %v", err)
			}
		case <-time.After(3 * time.Second):
			t.Error("server did not shut down in time")
		}
	})

	select {
	case a := <-ready:
		return a.String()
	case err := <-done:
		t.Fatalf("Run returned early: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("server never became ready")
	}
	return ""
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	c, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// readUntil reads until the accumulated output ends with suffix.
func readUntil(t *testing.T, c net.Conn, suffix string) string {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(3 * time.Second)) //nolint:errcheck
	var sb strings.Builder
	buf := make([]byte, 256)
	for !strings.HasSuffix(sb.String(), suffix) {
		n, err := c.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			t.Fatalf("read: %v (got %q, want suffix %q)", err, sb.String(), suffix)
		}
	}
	return sb.String()
}

// TestServeMode_Session walks one client through help, a configured
// command, an alias, an unknown line and exit over real TCP.
func TestServeMode_Session(t *testing.T) {
	cfg := config.Default()
	cfg.Commands = []*config.StaticCommand{{Name: "version", Help: "Shows the version.", Reply: "1.4.2"}}
	cfg.Aliases = map[string]string{"v": "version"}
	addr := startServe(t, cfg)

	c := dial(t, addr)
	if got := readUntil(t, c, prompt); got != greeting {
		t.Fatalf("greeting = %q", got)
	}

	c.Write([]byte("  help\r\n")) //nolint:errcheck
	help := readUntil(t, c, prompt)
	want := "Available commands:\r\n" +
		"help - Shows a list of available commands.\r\n" +
		"exit - Exits the Telnet session.\r\n" +
		"version - Shows the version.\r\n" + prompt
	if help != want {
		t.Errorf("help = %q", help)
	}

	c.Write([]byte("v\n")) //nolint:errcheck
	if got := readUntil(t, c, prompt); got != "1.4.2\r\n"+prompt {
		t.Errorf("alias reply = %q", got)
	}

	c.Write([]byte("reboot\r\n")) //nolint:errcheck
	if got := readUntil(t, c, prompt); got != "Unknown command: reboot\r\n"+prompt {
		t.Errorf("unknown = %q", got)
	}

	c.Write([]byte("exit\r\n")) //nolint:errcheck
	if got := readUntil(t, c, "\r\n"); got != "Goodbye!\r\n" {
		t.Errorf("exit = %q", got)
	}
	c.SetReadDeadline(time.Now().Add(3 * time.Second)) //nolint:errcheck
	if _, err := c.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("after exit err = %v, want EOF", err)
	}
}

// TestServeMode_CapacityOne verifies a second client waits for the
// only slot and is greeted once the first leaves.
func TestServeMode_CapacityOne(t *testing.T) {
	cfg := config.Default()
	cfg.MaxSessions = 1
	addr := startServe(t, cfg)

	first := dial(t, addr)
	readUntil(t, first, prompt)

	second := dial(t, addr)
	second.SetReadDeadline(time.Now().Add(150 * time.Millisecond)) //nolint:errcheck
	if n, err := second.Read(make([]byte, 64)); n > 0 || err == nil {
		t.Fatalf("second client should not be greeted yet (n=%d err=%v)", n, err)
	}

	first.Write([]byte("exit\n")) //nolint:errcheck
	readUntil(t, first, "Goodbye!\r\n")

	if got := readUntil(t, second, prompt); got != greeting {
		t.Errorf("second greeting = %q", got)
	}
}

// TestServeMode_PortBusy verifies a bind failure is reported after the
// configured attempts.
func TestServeMode_PortBusy(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	for _, retries := range []int{1, 2} {
		cfg := config.Default()
		cfg.Host = "127.0.0.1"
		cfg.Port = port
		cfg.ListenRetries = retries

		mode, err := Build(cfg, util.NewLogger(0))
		if err != nil {
			t.Fatal(err)
		}
		sm := mode.(*ServeMode)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = sm.Run(ctx)
		cancel()

		var ne *ncerr.NetworkError
		if !errors.As(err, &ne) || ne.Op != "listen" {
			t.Errorf("retries=%d: err = %v, want listen NetworkError", retries, err)
		}
		if sm.Metrics.ErrorCount() != 1 {
			t.Errorf("retries=%d: ErrorCount = %d, want 1", retries, sm.Metrics.ErrorCount())
		}
	}
}

// TestServeMode_RetryCancelled verifies cancellation interrupts the
// listen backoff.
func TestServeMode_RetryCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	cfg.ListenRetries = 100

	mode, err := Build(cfg, util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = mode.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("cancellation took too long")
	}
}
