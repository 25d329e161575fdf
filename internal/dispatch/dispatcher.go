// Package dispatch runs the per-queue processing loops: it pulls packs
// of messages from the broker, delivers them through a handler pool,
// classifies results and applies the queue's acknowledgment strategy.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vietddude/requeue/internal/core/config"
	"github.com/vietddude/requeue/internal/core/domain"
	"github.com/vietddude/requeue/internal/infra/storage"
	"github.com/vietddude/requeue/internal/metrics"
	"github.com/vietddude/requeue/internal/processing"
)

// Consumer pulls message packs from the broker.
type Consumer interface {
	PullBatch(ctx context.Context, queue string, n int) ([]*domain.Message, error)
}

// Stats is a snapshot of a dispatcher's progress, used by health checks.
type Stats struct {
	Queue          string
	PacksCommitted int64
	Reprocessed    int64
	Abandoned      int64
	LastPackAt     time.Time
}

// Dispatcher owns one queue's processing loop. Analyze is only ever
// called from Run, which guarantees the serialization the strategy
// state relies on.
type Dispatcher struct {
	cfg      config.QueueConfig
	consumer Consumer
	handler  Handler
	strategy processing.Strategy
	deadRepo storage.DeadLetterRepository

	mu    sync.Mutex
	stats Stats
}

// New creates a dispatcher for a queue.
func New(
	cfg config.QueueConfig,
	consumer Consumer,
	handler Handler,
	strategy processing.Strategy,
	deadRepo storage.DeadLetterRepository,
) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MessageTimeout <= 0 {
		cfg.MessageTimeout = config.Duration(30 * time.Second)
	}
	return &Dispatcher{
		cfg:      cfg,
		consumer: consumer,
		handler:  handler,
		strategy: strategy,
		deadRepo: deadRepo,
		stats:    Stats{Queue: cfg.Name},
	}
}

// Run executes the processing loop until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	slog.Info("Dispatcher started", "queue", d.cfg.Name, "batch_size", d.cfg.BatchSize)

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("Dispatcher stopped", "queue", d.cfg.Name)
			return err
		}

		pack, err := d.consumer.PullBatch(ctx, d.cfg.Name, d.cfg.BatchSize)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			slog.Error("Failed to pull batch", "queue", d.cfg.Name, "error", err)
			d.sleep(ctx)
			continue
		}

		if len(pack) == 0 {
			d.sleep(ctx)
			continue
		}

		if err := d.ProcessPack(ctx, pack); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			slog.Error("Pack aborted", "queue", d.cfg.Name, "error", err)
		}
	}
}

// ProcessPack runs one full commit cycle for a pack: repeated passes
// until the strategy commits or the pass is aborted.
func (d *Dispatcher) ProcessPack(ctx context.Context, pack []*domain.Message) error {
	start := time.Now()
	lastErr := make(map[uuid.UUID]string, len(pack))

	for {
		out := d.runPass(ctx, pack, lastErr)
		if err := ctx.Err(); err != nil {
			return err
		}

		decision, err := d.strategy.Analyze(ctx, out)
		if err != nil {
			if errors.Is(err, processing.ErrEmptyReprocess) {
				// Flag/outcome combination the policy does not cover.
				// Close the pack and keep the leftovers inspectable.
				d.abandon(ctx, out, domain.AbandonReasonPolicyDefect, lastErr)
				d.commit(start, "defect")
				return err
			}
			return err
		}

		if decision.Commit {
			if !out.Succeeded() {
				d.abandon(ctx, out, d.abandonReason(), lastErr)
			}
			d.commit(start, commitResult(out))
			return nil
		}

		metrics.MessagesReprocessed.WithLabelValues(d.cfg.Name).Add(float64(len(decision.Reprocess)))
		d.addReprocessed(len(decision.Reprocess))
		pack = collect(decision.Reprocess)
	}
}

// Stats returns a snapshot of the dispatcher's counters.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// runPass delivers every message of the pack through the handler pool
// and classifies the results into an outcome. The last handler error of
// each message is recorded in lastErr so abandoned messages carry it.
func (d *Dispatcher) runPass(ctx context.Context, pack []*domain.Message, lastErr map[uuid.UUID]string) *processing.Outcome {
	out := processing.NewOutcome(len(pack))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(d.cfg.Workers)

	for _, msg := range pack {
		g.Go(func() error {
			msg.Attempts++

			mctx, cancel := context.WithTimeout(ctx, d.cfg.MessageTimeout.Std())
			err := d.handler.Handle(mctx, msg)
			cancel()

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				out.MarkSuccess(msg)
				delete(lastErr, msg.ID)
				metrics.MessagesProcessed.WithLabelValues(d.cfg.Name, "success").Inc()
			case errors.Is(err, context.DeadlineExceeded):
				out.MarkPending(msg)
				lastErr[msg.ID] = err.Error()
				metrics.MessagesProcessed.WithLabelValues(d.cfg.Name, "timeout").Inc()
			default:
				out.MarkFailure(msg)
				lastErr[msg.ID] = err.Error()
				metrics.MessagesProcessed.WithLabelValues(d.cfg.Name, "failure").Inc()
				slog.Debug("Handler failed", "queue", d.cfg.Name, "id", msg.ID, "error", err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return out
}

// abandon persists the still-failed and pending messages of a committed
// outcome as dead letters.
func (d *Dispatcher) abandon(ctx context.Context, out *processing.Outcome, reason domain.AbandonReason, lastErr map[uuid.UUID]string) {
	var dls []*domain.DeadLetter
	now := time.Now().Unix()

	for _, msg := range out.Failure() {
		dls = append(dls, deadLetter(msg, reason, lastErr[msg.ID], now))
	}
	for _, msg := range out.Pending() {
		dls = append(dls, deadLetter(msg, reason, lastErr[msg.ID], now))
	}

	if err := d.deadRepo.AddBatch(ctx, dls); err != nil {
		slog.Error("Failed to store dead letters",
			"queue", d.cfg.Name, "count", len(dls), "error", err)
		return
	}

	metrics.MessagesAbandoned.WithLabelValues(d.cfg.Name, string(reason)).Add(float64(len(dls)))
	d.addAbandoned(len(dls))
	slog.Warn("Messages abandoned", "queue", d.cfg.Name, "count", len(dls), "reason", reason)
}

func (d *Dispatcher) abandonReason() domain.AbandonReason {
	if _, ok := d.strategy.(*processing.SkipStrategy); ok {
		return domain.AbandonReasonSkipPolicy
	}
	return domain.AbandonReasonRetryExhausted
}

func (d *Dispatcher) commit(start time.Time, result string) {
	metrics.PacksProcessed.WithLabelValues(d.cfg.Name, result).Inc()
	metrics.PackDuration.WithLabelValues(d.cfg.Name).Observe(time.Since(start).Seconds())

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.PacksCommitted++
	d.stats.LastPackAt = time.Now()
}

func (d *Dispatcher) addReprocessed(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Reprocessed += int64(n)
}

func (d *Dispatcher) addAbandoned(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Abandoned += int64(n)
}

func (d *Dispatcher) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(d.cfg.PollInterval.Std()):
	}
}

func commitResult(out *processing.Outcome) string {
	if out.Succeeded() {
		return "success"
	}
	return "partial"
}

func collect(msgs map[uuid.UUID]*domain.Message) []*domain.Message {
	res := make([]*domain.Message, 0, len(msgs))
	for _, msg := range msgs {
		res = append(res, msg)
	}
	return res
}

func deadLetter(msg *domain.Message, reason domain.AbandonReason, errMsg string, now int64) *domain.DeadLetter {
	return &domain.DeadLetter{
		ID:          uuid.New().String(),
		Queue:       msg.Queue,
		MessageID:   msg.ID.String(),
		Payload:     msg.Payload,
		Headers:     msg.Headers,
		Reason:      reason,
		Error:       errMsg,
		Attempts:    msg.Attempts,
		AbandonedAt: now,
	}
}
