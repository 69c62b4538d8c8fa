package subscriptions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	byUser map[string]Record
	now    func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byUser: make(map[string]Record), now: time.Now}
}

func (r *MemoryRepo) GetByUser(ctx context.Context, userID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	if existing, ok := r.byUser[rec.UserID]; ok {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.ID = uuid.NewString()
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	r.byUser[rec.UserID] = rec
	return nil
}

func (r *MemoryRepo) DeleteByCustomer(ctx context.Context, customerID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for userID, rec := range r.byUser {
		if rec.CustomerID == customerID {
			delete(r.byUser, userID)
			removed++
		}
	}
	return removed, nil
}

func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser), nil
}
