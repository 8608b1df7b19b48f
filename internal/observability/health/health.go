// Package health provides system health monitoring and status reporting.
package health

import "time"

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// ComponentHealth contains the health of one component.
type ComponentHealth struct {
	Name    string       `json:"name"`
	Status  SystemStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// CollectionHealth describes the most recent collection run.
type CollectionHealth struct {
	ComponentHealth
	LastStatus  string     `json:"last_status,omitempty"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
}

// RelayHealth summarizes the relay hosts.
type RelayHealth struct {
	ComponentHealth
	Hosts   int `json:"hosts"`
	Limited int `json:"limited"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus     `json:"system_status"`
	Repository   ComponentHealth  `json:"repository"`
	Collection   CollectionHealth `json:"collection"`
	Relays       RelayHealth      `json:"relays"`
	CheckedAt    time.Time        `json:"checked_at"`
}

// worst returns the more severe of two statuses.
func worst(a, b SystemStatus) SystemStatus {
	rank := map[SystemStatus]int{StatusHealthy: 0, StatusDegraded: 1, StatusCritical: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
