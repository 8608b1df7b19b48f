package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/ingest/transport"
)

const (
	checkInterval = 10 * time.Second
	staleAfter    = 24 * time.Hour
)

// Pinger checks that the store is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

// LogReader reads the collection audit trail.
type LogReader interface {
	ListCollectionLogs(ctx context.Context, since time.Time, limit int) ([]domain.CollectionLogEntry, error)
}

// RelayStats reports per-host relay state.
type RelayStats interface {
	Stats() []transport.HostStats
}

// Monitor aggregates health status from various system components.
type Monitor struct {
	repo       Pinger
	logs       LogReader
	relays     RelayStats
	now        func() time.Time
	lastCheck  time.Time
	lastReport *HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor. relays may be nil.
func NewMonitor(repo Pinger, logs LogReader, relays RelayStats) *Monitor {
	return &Monitor{
		repo:   repo,
		logs:   logs,
		relays: relays,
		now:    time.Now,
	}
}

// CheckHealth returns the current report. Results are reused for 10s.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.lastReport != nil && now.Sub(m.lastCheck) < checkInterval {
		return *m.lastReport
	}

	report := HealthReport{CheckedAt: now}

	// 1. Repository
	report.Repository = ComponentHealth{Name: "repository", Status: StatusHealthy}
	if err := m.repo.Health(ctx); err != nil {
		report.Repository.Status = StatusCritical
		report.Repository.Message = err.Error()
	}

	// 2. Collection
	report.Collection = m.checkCollection(ctx, now)

	// 3. Relays
	report.Relays = m.checkRelays()

	report.SystemStatus = worst(worst(report.Repository.Status, report.Collection.Status), report.Relays.Status)

	m.lastCheck = now
	m.lastReport = &report
	return report
}

func (m *Monitor) checkCollection(ctx context.Context, now time.Time) CollectionHealth {
	h := CollectionHealth{ComponentHealth: ComponentHealth{Name: "collection", Status: StatusHealthy}}

	logs, err := m.logs.ListCollectionLogs(ctx, now.Add(-staleAfter), 100)
	if err != nil {
		h.Status = StatusDegraded
		h.Message = fmt.Sprintf("failed to read collection logs: %v", err)
		return h
	}
	if len(logs) == 0 {
		h.Status = StatusDegraded
		h.Message = "no collection in the last 24h"
		return h
	}

	last := logs[0]
	h.LastStatus = string(last.Status)
	h.LastRun = &last.CreatedAt
	for i := range logs {
		if logs[i].Status == domain.CollectionStatusSuccess {
			h.LastSuccess = &logs[i].CreatedAt
			break
		}
	}

	switch {
	case last.Status != domain.CollectionStatusSuccess:
		h.Status = StatusDegraded
		h.Message = "last collection " + string(last.Status)
	case h.LastSuccess == nil:
		h.Status = StatusDegraded
		h.Message = "no successful collection in the last 24h"
	}
	return h
}

func (m *Monitor) checkRelays() RelayHealth {
	h := RelayHealth{ComponentHealth: ComponentHealth{Name: "relays", Status: StatusHealthy}}
	if m.relays == nil {
		return h
	}
	stats := m.relays.Stats()
	h.Hosts = len(stats)
	for _, s := range stats {
		if s.Status != transport.StatusHealthy.String() {
			h.Limited++
		}
	}
	if h.Hosts > 0 && h.Limited == h.Hosts {
		h.Status = StatusDegraded
		h.Message = "every relay host is rate limited"
	}
	return h
}
