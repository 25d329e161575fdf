package cli

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/vietddude/requeue/internal/core/domain"
	"github.com/vietddude/requeue/internal/infra/storage/memory"
)

// =============================================================================
// Mocks
// =============================================================================

type mockPusher struct {
	pushed []*domain.Message
	err    error
}

func (p *mockPusher) Push(ctx context.Context, queue string, msg *domain.Message) error {
	if p.err != nil {
		return p.err
	}
	p.pushed = append(p.pushed, msg)
	return nil
}

func deadLetterFor(queue, messageID string, abandonedAt int64) *domain.DeadLetter {
	return &domain.DeadLetter{
		ID:          uuid.New().String(),
		Queue:       queue,
		MessageID:   messageID,
		Payload:     []byte(`{"k":"v"}`),
		Headers:     map[string]string{"origin": "test"},
		Reason:      domain.AbandonReasonRetryExhausted,
		Attempts:    3,
		AbandonedAt: abandonedAt,
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestRedrive_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewDeadLetterRepo()
	pusher := &mockPusher{}

	ids := []string{uuid.New().String(), uuid.New().String()}
	for i, id := range ids {
		if err := repo.Add(ctx, deadLetterFor("orders", id, int64(i+1))); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	// Dead letter on another queue must not be touched.
	if err := repo.Add(ctx, deadLetterFor("payments", uuid.New().String(), 1)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	redriven, total, err := Redrive(ctx, repo, pusher, "orders", 100)
	if err != nil {
		t.Fatalf("Redrive failed: %v", err)
	}
	if redriven != 2 || total != 2 {
		t.Errorf("Expected 2/2 redriven, got %d/%d", redriven, total)
	}
	if len(pusher.pushed) != 2 {
		t.Fatalf("Expected 2 pushed messages, got %d", len(pusher.pushed))
	}
	if got := pusher.pushed[0].ID.String(); got != ids[0] {
		t.Errorf("Expected oldest dead letter first, got message %s", got)
	}
	if pusher.pushed[0].Attempts != 3 {
		t.Errorf("Expected attempts carried over, got %d", pusher.pushed[0].Attempts)
	}

	count, err := repo.Count(ctx, "orders")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected redriven dead letters removed, %d remain", count)
	}
	count, err = repo.Count(ctx, "payments")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected other queue untouched, got %d dead letters", count)
	}
}

func TestRedrive_SkipsInvalidMessageID(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewDeadLetterRepo()
	pusher := &mockPusher{}

	if err := repo.Add(ctx, deadLetterFor("orders", "not-a-uuid", 1)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	valid := uuid.New().String()
	if err := repo.Add(ctx, deadLetterFor("orders", valid, 2)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	redriven, total, err := Redrive(ctx, repo, pusher, "orders", 100)
	if err != nil {
		t.Fatalf("Redrive failed: %v", err)
	}
	if redriven != 1 || total != 2 {
		t.Errorf("Expected 1/2 redriven, got %d/%d", redriven, total)
	}
	if len(pusher.pushed) != 1 || pusher.pushed[0].ID.String() != valid {
		t.Fatalf("Expected only the valid message pushed, got %d", len(pusher.pushed))
	}

	// The skipped dead letter stays in the store for inspection.
	count, err := repo.Count(ctx, "orders")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected skipped dead letter retained, got %d", count)
	}
}

func TestRedrive_RespectsLimit(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewDeadLetterRepo()
	pusher := &mockPusher{}

	for i := 0; i < 5; i++ {
		if err := repo.Add(ctx, deadLetterFor("orders", uuid.New().String(), int64(i))); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	redriven, total, err := Redrive(ctx, repo, pusher, "orders", 2)
	if err != nil {
		t.Fatalf("Redrive failed: %v", err)
	}
	if redriven != 2 || total != 2 {
		t.Errorf("Expected 2/2 redriven under limit, got %d/%d", redriven, total)
	}

	count, err := repo.Count(ctx, "orders")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 dead letters remaining, got %d", count)
	}
}
