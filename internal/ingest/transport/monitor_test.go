package transport

import (
	"testing"
	"time"
)

func TestMonitor_ThrottleWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMonitor()
	m.now = func() time.Time { return now }

	if !m.Available("relay") {
		t.Fatal("unknown host should be available")
	}

	m.RecordThrottle("relay", 429, "30")
	if m.Status("relay") != StatusThrottled {
		t.Errorf("expected throttled, got %v", m.Status("relay"))
	}
	if got := m.RetryAfter("relay"); got != 30*time.Second {
		t.Errorf("expected 30s retry after, got %v", got)
	}

	now = now.Add(31 * time.Second)
	if !m.Available("relay") {
		t.Error("expected host to recover after retry-after")
	}
}

func TestMonitor_Blocked(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMonitor()
	m.now = func() time.Time { return now }

	m.RecordThrottle("relay", 403, "")
	if m.Status("relay") != StatusBlocked {
		t.Errorf("expected blocked, got %v", m.Status("relay"))
	}

	now = now.Add(5 * time.Minute)
	if m.Available("relay") {
		t.Error("blocked host should stay unavailable for the block window")
	}
}

func TestMonitor_Stats(t *testing.T) {
	m := NewMonitor()
	m.RecordRequest("b", 100*time.Millisecond)
	m.RecordRequest("b", 300*time.Millisecond)
	m.RecordRequest("a", 50*time.Millisecond)

	stats := m.Stats()
	if len(stats) != 2 || stats[0].Host != "a" {
		t.Fatalf("expected stats sorted by host, got %+v", stats)
	}
	if stats[1].AverageLatency != 200*time.Millisecond {
		t.Errorf("expected 200ms average, got %v", stats[1].AverageLatency)
	}
}
