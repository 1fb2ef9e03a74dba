package metrics

import (
	"encoding/json"
	"testing"
)

func TestCollector_Sessions(t *testing.T) {
	c := New()

	c.SessionOpened()
	c.SessionOpened()
	if c.ActiveSessions() != 2 {
		t.Errorf("active = %d, want 2", c.ActiveSessions())
	}
	if c.TotalSessions() != 2 {
		t.Errorf("total = %d, want 2", c.TotalSessions())
	}

	c.SessionClosed()
	if c.ActiveSessions() != 1 {
		t.Errorf("active = %d, want 1", c.ActiveSessions())
	}
	if c.TotalSessions() != 2 {
		t.Errorf("total should remain 2, got %d", c.TotalSessions())
	}
}

func TestCollector_Accepts(t *testing.T) {
	c := New()
	c.AcceptDeferred()
	c.AcceptDeferred()
	c.AcceptThrottled()

	if c.DeferredAccepts() != 2 {
		t.Errorf("deferred = %d, want 2", c.DeferredAccepts())
	}
	if snap := c.Snapshot(); snap.AcceptsThrottled != 1 {
		t.Errorf("throttled = %d, want 1", snap.AcceptsThrottled)
	}
}

func TestCollector_Commands(t *testing.T) {
	c := New()
	c.CommandDispatched()
	c.CommandDispatched()
	c.UnknownCommand()

	if c.Commands() != 2 {
		t.Errorf("commands = %d, want 2", c.Commands())
	}
	if c.UnknownCommands() != 1 {
		t.Errorf("unknown = %d, want 1", c.UnknownCommands())
	}
}

func TestCollector_Bytes(t *testing.T) {
	c := New()

	c.BytesReceived(6)
	c.BytesSent(512)
	c.BytesReceived(100)

	if c.TotalBytesIn() != 106 {
		t.Errorf("bytes in = %d, want 106", c.TotalBytesIn())
	}
	if c.TotalBytesOut() != 512 {
		t.Errorf("bytes out = %d, want 512", c.TotalBytesOut())
	}
}

func TestCollector_Errors(t *testing.T) {
	c := New()

	c.RecordError("first error")
	c.RecordError("second error")

	if c.ErrorCount() != 2 {
		t.Errorf("errors = %d, want 2", c.ErrorCount())
	}
	snap := c.Snapshot()
	if snap.LastErrorMessage != "second error" {
		t.Errorf("last error = %q", snap.LastErrorMessage)
	}
	if snap.LastError == "" {
		t.Error("expected last error timestamp")
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.SessionOpened()
	c.BytesSent(42)

	raw := c.JSON()
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("JSON parse error: %v", err)
	}
	if snap.SessionsActive != 1 {
		t.Errorf("JSON active = %d", snap.SessionsActive)
	}
	if snap.BytesOut != 42 {
		t.Errorf("JSON bytes out = %d", snap.BytesOut)
	}
}

func TestNilCollector_NoOps(t *testing.T) {
	var c *Collector

	// None of these should panic.
	c.SessionOpened()
	c.SessionClosed()
	c.AcceptDeferred()
	c.AcceptThrottled()
	c.CommandDispatched()
	c.UnknownCommand()
	c.BytesReceived(100)
	c.BytesSent(100)
	c.RecordError("x")

	if c.ActiveSessions() != 0 || c.TotalSessions() != 0 || c.Commands() != 0 {
		t.Error("nil collector should report zeros")
	}
	if snap := c.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("nil snapshot = %+v", snap)
	}
}
