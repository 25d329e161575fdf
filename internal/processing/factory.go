package processing

import (
	"fmt"

	"github.com/vietddude/requeue/internal/core/config"
)

// NewStrategy constructs the acknowledgment strategy declared by a
// queue's configuration. It is called once per queue at startup; an
// unrecognized type is a misconfiguration and halts wiring for that
// queue.
func NewStrategy(queue string, cfg config.AckStrategyConfig) (Strategy, error) {
	switch cfg.Type {
	case config.StrategySkipAll:
		return NewSkipStrategy(queue), nil
	case config.StrategyRetryAll:
		return newRetryStrategy(queue, true, true, true, cfg), nil
	case config.StrategyRetryFailed:
		return newRetryStrategy(queue, false, true, false, cfg), nil
	case config.StrategyRetryTimedOut:
		return newRetryStrategy(queue, false, false, true, cfg), nil
	case config.StrategyRetryFailedAndTimedOut:
		return newRetryStrategy(queue, false, true, true, cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, cfg.Type)
	}
}
