// Package cache puts a short-lived ristretto cache in front of license lookups.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/keybox-dev/keybox-go/constant"
	"github.com/keybox-dev/keybox-go/internal/store"
	"github.com/keybox-dev/keybox-go/model"
	"github.com/keybox-dev/keybox-go/pkg"
)

// Repository decorates a store.Repository, caching FindByKey hits for ttl.
// Any write through the decorator evicts the affected key, and a lookup that
// overlapped such a write does not fill the cache. Writes that bypass the
// decorator are visible after at most ttl.
type Repository struct {
	next   store.Repository
	cache  *ristretto.Cache[string, model.License]
	ttl    time.Duration
	logger log.Logger

	// mu orders cache fills against evictions. gens holds one write counter per
	// key stripe; epoch is bumped by bulk writes.
	mu    sync.Mutex
	gens  [constant.CacheGenerationStripes]uint64
	epoch uint64
}

var _ store.Repository = (*Repository)(nil)

// New wraps next with a cache holding entries for ttl.
func New(next store.Repository, ttl time.Duration, logger log.Logger) (*Repository, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, model.License]{
		NumCounters: constant.CacheNumCounters,
		MaxCost:     constant.CacheMaxCost,
		BufferItems: constant.CacheBufferItems,
	})
	if err != nil {
		return nil, err
	}

	return &Repository{next: next, cache: c, ttl: ttl, logger: logger}, nil
}

// Primary returns the undecorated store, for reads that must not be stale.
func (r *Repository) Primary() store.Repository {
	return r.next
}

func stripe(key string) int {
	return int(xxhash.Sum64String(key) % constant.CacheGenerationStripes)
}

func (r *Repository) Create(ctx context.Context, l *model.License) error {
	if err := r.next.Create(ctx, l); err != nil {
		return err
	}

	r.evict(pkg.NormalizeKey(l.Key))

	return nil
}

func (r *Repository) FindByKey(ctx context.Context, key string) (*model.License, error) {
	key = pkg.NormalizeKey(key)

	if l, ok := r.cache.Get(key); ok {
		r.logger.Debugf("License %s served from cache", key)
		return &l, nil
	}

	r.mu.Lock()
	gen, epoch := r.gens[stripe(key)], r.epoch
	r.mu.Unlock()

	l, err := r.next.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gens[stripe(key)] != gen || r.epoch != epoch {
		r.logger.Debugf("License %s changed during lookup, not caching", key)
		return l, nil
	}

	r.cache.SetWithTTL(key, *l, 1, r.ttl)

	return l, nil
}

func (r *Repository) CompareAndSwap(ctx context.Context, expected model.Status, next *model.License) (bool, error) {
	ok, err := r.next.CompareAndSwap(ctx, expected, next)

	r.evict(pkg.NormalizeKey(next.Key))

	return ok, err
}

func (r *Repository) evict(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gens[stripe(key)]++
	r.cache.Del(key)
}

func (r *Repository) List(ctx context.Context) ([]*model.License, error) {
	return r.next.List(ctx)
}

func (r *Repository) ExpireActive(ctx context.Context, now time.Time) (int64, error) {
	n, err := r.next.ExpireActive(ctx, now)
	if n > 0 {
		r.mu.Lock()
		r.epoch++
		r.cache.Clear()
		r.mu.Unlock()

		r.logger.Debugf("Cleared license cache after expiring %d licenses", n)
	}

	return n, err
}

// Wait blocks until buffered cache writes are applied.
func (r *Repository) Wait() {
	r.cache.Wait()
}

// Close releases the cache's background goroutines.
func (r *Repository) Close() {
	r.cache.Close()
}
