// Package health provides system health monitoring and status reporting.
package health

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// QueueHealth contains health metrics for a single consumed queue.
type QueueHealth struct {
	Queue          string       `json:"queue"`
	Status         SystemStatus `json:"status"`
	Depth          int64        `json:"depth"`
	DeadLetters    int          `json:"dead_letters"`
	PacksCommitted int64        `json:"packs_committed"`
	Reprocessed    int64        `json:"reprocessed"`
	Abandoned      int64        `json:"abandoned"`
}
