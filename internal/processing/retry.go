package processing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/requeue/internal/core/config"
	"github.com/vietddude/requeue/internal/core/domain"
)

// RetryStrategy selectively resubmits subsets of a failed pass, bounded
// by a retry ceiling and a failure-ratio ceiling.
//
// retryCount and initialTotal are owned by the single dispatcher loop of
// the strategy's queue; calls are serialized there, so no locking.
type RetryStrategy struct {
	queue string

	retrySuccessful bool
	retryFailed     bool
	retryTimeout    bool

	maxRetries          int
	maxFailurePercent   float64
	pauseBetweenRetries time.Duration

	// initialTotal is the size of the first failed pass seen by this
	// instance. All later ratio checks run against it, even though
	// subsequent passes operate on shrinking sub-packs.
	initialTotal int
	retryCount   int
}

func newRetryStrategy(queue string, retrySuccessful, retryFailed, retryTimeout bool, cfg config.AckStrategyConfig) *RetryStrategy {
	return &RetryStrategy{
		queue:               queue,
		retrySuccessful:     retrySuccessful,
		retryFailed:         retryFailed,
		retryTimeout:        retryTimeout,
		maxRetries:          cfg.Retries,
		maxFailurePercent:   cfg.FailurePercentage,
		pauseBetweenRetries: time.Duration(cfg.PauseBetweenRetries) * time.Second,
	}
}

// Analyze implements Strategy.
func (s *RetryStrategy) Analyze(ctx context.Context, out *Outcome) (Decision, error) {
	if out.Succeeded() {
		return commitDecision(), nil
	}

	if s.retryCount == 0 {
		s.initialTotal = out.Total()
	}
	s.retryCount++

	failedCount := float64(out.FailedCount())

	if s.maxRetries > 0 && s.retryCount > s.maxRetries {
		slog.Info("Skip reprocess of the pack due to max retries",
			"queue", s.queue, "retries", s.retryCount-1)
		return commitDecision(), nil
	}

	if s.maxFailurePercent > 0 && failedCount/float64(s.initialTotal) > s.maxFailurePercent {
		slog.Info("Skip reprocess of the pack due to max allowed failure percentage",
			"queue", s.queue,
			"failed", int(failedCount),
			"initial_total", s.initialTotal)
		return commitDecision(), nil
	}

	toReprocess := make(map[uuid.UUID]*domain.Message, s.initialTotal)
	if s.retryFailed {
		for id, msg := range out.Failure() {
			toReprocess[id] = msg
		}
	}
	if s.retryTimeout {
		for id, msg := range out.Pending() {
			toReprocess[id] = msg
		}
	}
	if s.retrySuccessful {
		for id, msg := range out.Success() {
			toReprocess[id] = msg
		}
	}

	// A failed pass with nothing eligible for resubmission means the
	// configured flags do not cover the observed outcome.
	if len(toReprocess) == 0 {
		return Decision{}, ErrEmptyReprocess
	}

	slog.Info("Going to reprocess messages", "queue", s.queue, "count", len(toReprocess))

	if s.pauseBetweenRetries > 0 {
		select {
		case <-time.After(s.pauseBetweenRetries):
		case <-ctx.Done():
			return Decision{}, ctx.Err()
		}
	}

	return reprocessDecision(toReprocess), nil
}
