package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/keybox-dev/keybox-go/internal/lifecycle"
	"github.com/keybox-dev/keybox-go/model"
	"github.com/keybox-dev/keybox-go/pkg"
)

// MemoryRepository keeps licenses in a map guarded by a mutex.
type MemoryRepository struct {
	mu   sync.Mutex
	rows map[string]model.License
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: map[string]model.License{}}
}

func (r *MemoryRepository) Create(_ context.Context, l *model.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pkg.NormalizeKey(l.Key)
	if _, ok := r.rows[key]; ok {
		return ErrDuplicateKey
	}

	r.rows[key] = *l

	return nil
}

func (r *MemoryRepository) FindByKey(_ context.Context, key string) (*model.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[pkg.NormalizeKey(key)]
	if !ok {
		return nil, ErrNotFound
	}

	return &row, nil
}

func (r *MemoryRepository) CompareAndSwap(_ context.Context, expected model.Status, next *model.License) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pkg.NormalizeKey(next.Key)

	row, ok := r.rows[key]
	if !ok {
		return false, ErrNotFound
	}

	if row.Status != expected {
		return false, nil
	}

	row.Status = next.Status
	row.IssuedAt = next.IssuedAt
	row.UpdatedAt = next.UpdatedAt
	r.rows[key] = row

	return true, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*model.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.License, 0, len(r.rows))

	for _, row := range r.rows {
		l := row
		out = append(out, &l)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *MemoryRepository) ExpireActive(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64

	for key, row := range r.rows {
		if lifecycle.IsExpired(&row, now) {
			row.Status = model.StatusExpired
			row.UpdatedAt = now
			r.rows[key] = row
			n++
		}
	}

	return n, nil
}
