package storage

import (
	"context"
	"errors"

	"github.com/vietddude/requeue/internal/core/domain"
)

var (
	// ErrNotFound is returned when a dead letter doesn't exist
	ErrNotFound = errors.New("dead letter not found")
)

// DeadLetterRepository handles storage of abandoned messages
type DeadLetterRepository interface {
	// Add saves a dead letter
	Add(ctx context.Context, dl *domain.DeadLetter) error

	// AddBatch saves multiple dead letters
	AddBatch(ctx context.Context, dls []*domain.DeadLetter) error

	// List retrieves dead letters for a queue, oldest first
	List(ctx context.Context, queue string, limit int) ([]*domain.DeadLetter, error)

	// Count returns the number of dead letters for a queue
	Count(ctx context.Context, queue string) (int, error)

	// Delete removes a dead letter
	Delete(ctx context.Context, id string) error

	// DeleteOlderThan removes dead letters abandoned before the given
	// unix timestamp, returning how many were removed
	DeleteOlderThan(ctx context.Context, queue string, threshold int64) (int, error)
}
