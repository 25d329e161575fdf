package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/requeue/internal/core/config"
	"github.com/vietddude/requeue/internal/infra/storage"
)

// Pruner deletes old dead letters based on retention policy.
type Pruner struct {
	cfg      config.QueueConfig
	deadRepo storage.DeadLetterRepository
}

// NewPruner creates a new Pruner worker.
func NewPruner(cfg config.QueueConfig, deadRepo storage.DeadLetterRepository) *Pruner {
	return &Pruner{
		cfg:      cfg,
		deadRepo: deadRepo,
	}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	retention := p.cfg.RetentionPeriod.Std()
	if retention <= 0 {
		return // Retention disabled
	}

	// Check interval: 10% of retention period, clamped to [1m, 1h]
	interval := min(retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	threshold := time.Now().Add(-p.cfg.RetentionPeriod.Std()).Unix()

	removed, err := p.deadRepo.DeleteOlderThan(ctx, p.cfg.Name, threshold)
	if err != nil {
		slog.Error("Failed to prune dead letters", "queue", p.cfg.Name, "error", err)
		return
	}
	if removed > 0 {
		slog.Info("Pruned dead letters", "queue", p.cfg.Name, "removed", removed)
	}
}
