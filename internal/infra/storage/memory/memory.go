package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vietddude/requeue/internal/core/domain"
	"github.com/vietddude/requeue/internal/infra/storage"
)

// DeadLetterRepo is an in-memory storage.DeadLetterRepository, used when
// no database is configured and in tests.
type DeadLetterRepo struct {
	mu      sync.RWMutex
	letters map[string]*domain.DeadLetter
}

func NewDeadLetterRepo() *DeadLetterRepo {
	return &DeadLetterRepo{
		letters: make(map[string]*domain.DeadLetter),
	}
}

func (r *DeadLetterRepo) Add(ctx context.Context, dl *domain.DeadLetter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.letters[dl.ID] = dl
	return nil
}

func (r *DeadLetterRepo) AddBatch(ctx context.Context, dls []*domain.DeadLetter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dl := range dls {
		r.letters[dl.ID] = dl
	}
	return nil
}

func (r *DeadLetterRepo) List(ctx context.Context, queue string, limit int) ([]*domain.DeadLetter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []*domain.DeadLetter
	for _, dl := range r.letters {
		if dl.Queue == queue {
			res = append(res, dl)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].AbandonedAt < res[j].AbandonedAt
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (r *DeadLetterRepo) Count(ctx context.Context, queue string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, dl := range r.letters {
		if dl.Queue == queue {
			count++
		}
	}
	return count, nil
}

func (r *DeadLetterRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.letters[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.letters, id)
	return nil
}

func (r *DeadLetterRepo) DeleteOlderThan(ctx context.Context, queue string, threshold int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, dl := range r.letters {
		if dl.Queue == queue && dl.AbandonedAt < threshold {
			delete(r.letters, id)
			removed++
		}
	}
	return removed, nil
}
