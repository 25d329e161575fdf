package processing

import (
	"context"
	"errors"
)

var (
	// ErrUnsupportedStrategy is returned by the factory for an
	// unrecognized acknowledgment strategy type. Fatal at startup.
	ErrUnsupportedStrategy = errors.New("unsupported acknowledgment strategy type")

	// ErrEmptyReprocess is returned when a strategy's enabled flags
	// produce an empty reprocess set while not committing. This is a
	// misconfiguration of flags against the observed outcome and must
	// fail loudly rather than loop on nothing.
	ErrEmptyReprocess = errors.New("reprocess decision with empty message set")
)

// Strategy decides, after each processing pass, whether a pack is done or
// which subset of it must be resubmitted.
//
// Implementations are not thread-safe: each queue owns one instance and
// the queue's dispatcher loop calls Analyze serially, once per pass.
type Strategy interface {
	// Analyze inspects the outcome of one pass and returns the decision
	// for it. A cancelled context aborts the pass with ctx.Err(); no
	// partial decision is returned.
	Analyze(ctx context.Context, out *Outcome) (Decision, error)
}
