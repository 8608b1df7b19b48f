package transport

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"
)

// HostStatus represents the health state of a relay host.
type HostStatus int

const (
	StatusHealthy   HostStatus = iota // Host is answering normally
	StatusThrottled                   // Host is rate limiting
	StatusBlocked                     // Host has blocked this client
)

func (s HostStatus) String() string {
	switch s {
	case StatusThrottled:
		return "throttled"
	case StatusBlocked:
		return "blocked"
	default:
		return "healthy"
	}
}

// HostStats holds monitoring statistics for one relay host.
type HostStats struct {
	Host           string        `json:"host"`
	Status         string        `json:"status"`
	AverageLatency time.Duration `json:"average_latency"`
	Throttle429    int           `json:"throttle_429"`
	Throttle403    int           `json:"throttle_403"`
	RetryAfter     time.Duration `json:"retry_after"`
}

type hostState struct {
	latencies     []time.Duration
	status429     int
	status403     int
	lastThrottle  time.Time
	retryAfter    time.Duration
	lastThrottled int
}

// Monitor tracks rate limiting per relay host so that a throttled
// candidate is skipped until its retry-after window passes.
type Monitor struct {
	mu    sync.RWMutex
	hosts map[string]*hostState
	now   func() time.Time

	maxLatencyWindow  int
	defaultRetryAfter time.Duration
	blockRetryAfter   time.Duration
}

// NewMonitor creates a monitor with default windows.
func NewMonitor() *Monitor {
	return &Monitor{
		hosts:             make(map[string]*hostState),
		now:               time.Now,
		maxLatencyWindow:  50,
		defaultRetryAfter: 60 * time.Second,
		blockRetryAfter:   10 * time.Minute, // Longer for IP block
	}
}

func (m *Monitor) state(host string) *hostState {
	st, ok := m.hosts[host]
	if !ok {
		st = &hostState{}
		m.hosts[host] = st
	}
	return st
}

// RecordRequest records a successful request with its latency.
func (m *Monitor) RecordRequest(host string, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state(host)
	st.latencies = append(st.latencies, latency)
	if len(st.latencies) > m.maxLatencyWindow {
		st.latencies = st.latencies[1:]
	}
}

// RecordThrottle records a 429 or 403 answer from host.
func (m *Monitor) RecordThrottle(host string, statusCode int, retryAfter string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state(host)
	st.lastThrottle = m.now()
	st.lastThrottled = statusCode

	switch statusCode {
	case http.StatusTooManyRequests:
		st.status429++
		st.retryAfter = m.defaultRetryAfter
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			st.retryAfter = time.Duration(secs) * time.Second
		}
	case http.StatusForbidden:
		st.status403++
		st.retryAfter = m.blockRetryAfter
	}
}

// Status returns the current status of host.
func (m *Monitor) Status(host string) HostStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked(host)
}

func (m *Monitor) statusLocked(host string) HostStatus {
	st, ok := m.hosts[host]
	if !ok || st.lastThrottle.IsZero() {
		return StatusHealthy
	}
	if m.now().Sub(st.lastThrottle) >= st.retryAfter {
		return StatusHealthy
	}
	if st.lastThrottled == http.StatusForbidden {
		return StatusBlocked
	}
	return StatusThrottled
}

// Available reports whether host may be tried now.
func (m *Monitor) Available(host string) bool {
	return m.Status(host) == StatusHealthy
}

// RetryAfter returns remaining time before host may be retried.
func (m *Monitor) RetryAfter(host string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.hosts[host]
	if !ok || st.retryAfter == 0 {
		return 0
	}
	remaining := st.retryAfter - m.now().Sub(st.lastThrottle)
	if remaining > 0 {
		return remaining
	}
	return 0
}

// Stats returns a snapshot for every host seen so far.
func (m *Monitor) Stats() []HostStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]HostStats, 0, len(m.hosts))
	for host, st := range m.hosts {
		var avg time.Duration
		if len(st.latencies) > 0 {
			var total time.Duration
			for _, lat := range st.latencies {
				total += lat
			}
			avg = total / time.Duration(len(st.latencies))
		}

		var retry time.Duration
		if st.retryAfter > 0 {
			retry = max(st.retryAfter-m.now().Sub(st.lastThrottle), 0)
		}

		out = append(out, HostStats{
			Host:           host,
			Status:         m.statusLocked(host).String(),
			AverageLatency: avg,
			Throttle429:    st.status429,
			Throttle403:    st.status403,
			RetryAfter:     retry,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Host < out[j].Host })
	return out
}
