package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation for development and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Resume
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Resume)}
}

func (r *MemoryRepo) Create(ctx context.Context, res Resume, quota int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if quota >= 0 {
		owned := 0
		for _, existing := range r.byID {
			if existing.UserID == res.UserID {
				owned++
			}
		}
		if owned >= quota {
			return ErrUpgradeRequired
		}
	}
	r.byID[res.ID] = res.Clone()
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, res Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[res.ID]
	if !ok || existing.UserID != res.UserID {
		return ErrNotFound
	}
	res.CreatedAt = existing.CreatedAt
	res.PhotoKey = existing.PhotoKey
	r.byID[res.ID] = res.Clone()
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.byID[id]
	if !ok || res.UserID != userID {
		return Resume{}, ErrNotFound
	}
	return res.Clone(), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Resume
	for _, res := range r.byID {
		if res.UserID == userID {
			out = append(out, res.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, res := range r.byID {
		if res.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok || res.UserID != userID {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepo) SetPhoto(ctx context.Context, userID, id, photoKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok || res.UserID != userID {
		return ErrNotFound
	}
	res.PhotoKey = photoKey
	res.UpdatedAt = time.Now().UTC()
	r.byID[id] = res
	return nil
}
