package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/requeue/internal/dispatch"
	"github.com/vietddude/requeue/internal/infra/storage"
	"github.com/vietddude/requeue/internal/metrics"
)

// DepthFetcher fetches the number of waiting messages for a queue.
type DepthFetcher interface {
	Depth(ctx context.Context, queue string) (int64, error)
}

// StatsProvider exposes a dispatcher's progress counters.
type StatsProvider interface {
	Stats() dispatch.Stats
}

// Monitor aggregates health status from the broker, the dead letter
// store and the dispatcher loops.
type Monitor struct {
	queues      []string
	depths      DepthFetcher
	deadRepo    storage.DeadLetterRepository
	dispatchers map[string]StatsProvider
	lastCheck   time.Time
	lastReport  map[string]QueueHealth
	mu          sync.RWMutex
}

// NewMonitor creates a new health monitor.
func NewMonitor(
	queues []string,
	depths DepthFetcher,
	deadRepo storage.DeadLetterRepository,
	dispatchers map[string]StatsProvider,
) *Monitor {
	return &Monitor{
		queues:      queues,
		depths:      depths,
		deadRepo:    deadRepo,
		dispatchers: dispatchers,
		lastReport:  make(map[string]QueueHealth),
	}
}

// CheckHealth performs a health check for all queues.
func (m *Monitor) CheckHealth(ctx context.Context) map[string]QueueHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Rate limit checks to avoid hammering the broker and the database
	if time.Since(m.lastCheck) < 10*time.Second && len(m.lastReport) > 0 {
		return m.lastReport
	}

	report := make(map[string]QueueHealth)

	for _, queue := range m.queues {
		health := QueueHealth{
			Queue:  queue,
			Status: StatusHealthy,
		}

		depth, err := m.depths.Depth(ctx, queue)
		if err != nil {
			health.Status = StatusDegraded
		} else {
			health.Depth = depth
			metrics.QueueDepth.WithLabelValues(queue).Set(float64(depth))
		}

		count, err := m.deadRepo.Count(ctx, queue)
		if err == nil {
			health.DeadLetters = count
			metrics.DeadLetters.WithLabelValues(queue).Set(float64(count))
		}

		if d, ok := m.dispatchers[queue]; ok {
			stats := d.Stats()
			health.PacksCommitted = stats.PacksCommitted
			health.Reprocessed = stats.Reprocessed
			health.Abandoned = stats.Abandoned
		}

		if health.Depth > 100000 || health.DeadLetters > 1000 {
			health.Status = StatusCritical
		} else if health.Depth > 10000 || health.DeadLetters > 0 {
			health.Status = StatusDegraded
		}

		report[queue] = health
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}
