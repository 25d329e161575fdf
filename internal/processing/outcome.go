// Package processing contains the acknowledgment policy engine: the
// classification of a processing pass over a pack of messages and the
// strategies that decide between committing the pack and reprocessing a
// subset of it.
package processing

import (
	"github.com/google/uuid"
	"github.com/vietddude/requeue/internal/core/domain"
)

// Outcome is the partitioned result of one processing pass over a pack.
// The three sets are disjoint and together cover the pack submitted for
// the pass. It is built by the dispatcher and read-only once handed to a
// strategy.
type Outcome struct {
	success map[uuid.UUID]*domain.Message
	failure map[uuid.UUID]*domain.Message
	pending map[uuid.UUID]*domain.Message
}

// NewOutcome creates an empty outcome sized for a pack.
func NewOutcome(size int) *Outcome {
	return &Outcome{
		success: make(map[uuid.UUID]*domain.Message, size),
		failure: make(map[uuid.UUID]*domain.Message),
		pending: make(map[uuid.UUID]*domain.Message),
	}
}

// MarkSuccess records a message the handler completed.
func (o *Outcome) MarkSuccess(msg *domain.Message) {
	o.success[msg.ID] = msg
}

// MarkFailure records a message the handler returned an error for.
func (o *Outcome) MarkFailure(msg *domain.Message) {
	o.failure[msg.ID] = msg
}

// MarkPending records a message that neither succeeded nor failed within
// the pass (timed out or still in flight).
func (o *Outcome) MarkPending(msg *domain.Message) {
	o.pending[msg.ID] = msg
}

// Succeeded reports whether the pass fully succeeded.
func (o *Outcome) Succeeded() bool {
	return len(o.failure) == 0 && len(o.pending) == 0
}

// Total returns the size of the pack this outcome covers.
func (o *Outcome) Total() int {
	return len(o.success) + len(o.failure) + len(o.pending)
}

// FailedCount returns the number of failed plus pending messages.
// Successes are never counted against the failure ratio.
func (o *Outcome) FailedCount() int {
	return len(o.failure) + len(o.pending)
}

// Success returns the successfully processed messages.
func (o *Outcome) Success() map[uuid.UUID]*domain.Message { return o.success }

// Failure returns the messages the handler errored on.
func (o *Outcome) Failure() map[uuid.UUID]*domain.Message { return o.failure }

// Pending returns the messages that timed out during the pass.
func (o *Outcome) Pending() map[uuid.UUID]*domain.Message { return o.pending }
