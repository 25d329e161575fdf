package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vietddude/requeue/internal/core/domain"
	"github.com/vietddude/requeue/internal/infra/storage"
)

func seed(t *testing.T, repo *DeadLetterRepo, queue string, abandonedAt int64) *domain.DeadLetter {
	t.Helper()
	dl := &domain.DeadLetter{
		ID:          uuid.New().String(),
		Queue:       queue,
		MessageID:   uuid.New().String(),
		Payload:     []byte("payload"),
		Reason:      domain.AbandonReasonRetryExhausted,
		AbandonedAt: abandonedAt,
	}
	if err := repo.Add(context.Background(), dl); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return dl
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewDeadLetterRepo()
	dl := seed(t, repo, "orders", 1)

	if err := repo.Delete(ctx, dl.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	count, err := repo.Count(ctx, "orders")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty repo after delete, got %d", count)
	}

	if err := repo.Delete(ctx, dl.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing id, got %v", err)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	tests := []struct {
		name        string
		abandonedAt []int64
		threshold   int64
		wantRemoved int
		wantLeft    int
	}{
		{
			name:        "removes entries below threshold",
			abandonedAt: []int64{10, 20, 30},
			threshold:   25,
			wantRemoved: 2,
			wantLeft:    1,
		},
		{
			name:        "threshold is exclusive",
			abandonedAt: []int64{10, 20},
			threshold:   10,
			wantRemoved: 0,
			wantLeft:    2,
		},
		{
			name:        "removes everything",
			abandonedAt: []int64{10, 20},
			threshold:   100,
			wantRemoved: 2,
			wantLeft:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewDeadLetterRepo()
			for _, at := range tt.abandonedAt {
				seed(t, repo, "orders", at)
			}
			// An old entry on another queue must survive.
			seed(t, repo, "payments", 1)

			removed, err := repo.DeleteOlderThan(ctx, "orders", tt.threshold)
			if err != nil {
				t.Fatalf("DeleteOlderThan failed: %v", err)
			}
			if removed != tt.wantRemoved {
				t.Errorf("Expected %d removed, got %d", tt.wantRemoved, removed)
			}

			left, err := repo.Count(ctx, "orders")
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if left != tt.wantLeft {
				t.Errorf("Expected %d remaining, got %d", tt.wantLeft, left)
			}
			other, err := repo.Count(ctx, "payments")
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if other != 1 {
				t.Errorf("Expected other queue untouched, got %d", other)
			}
		})
	}
}
