package processing

import (
	"context"
	"log/slog"
)

// SkipStrategy never reprocesses: every pack is committed as-is and
// whatever failed or timed out is abandoned.
type SkipStrategy struct {
	queue string
}

// NewSkipStrategy creates a skip strategy for a queue.
func NewSkipStrategy(queue string) *SkipStrategy {
	return &SkipStrategy{queue: queue}
}

// Analyze commits unconditionally.
func (s *SkipStrategy) Analyze(ctx context.Context, out *Outcome) (Decision, error) {
	if !out.Succeeded() {
		slog.Info("Reprocessing skipped",
			"queue", s.queue,
			"failed", len(out.Failure()),
			"timed_out", len(out.Pending()))
	}
	return commitDecision(), nil
}
