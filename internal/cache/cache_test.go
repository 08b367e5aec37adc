package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/keybox-dev/keybox-go/internal/store"
	"github.com/keybox-dev/keybox-go/model"
	"github.com/keybox-dev/keybox-go/test/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestFindByKeyIsCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := store.NewMockRepository(ctrl)

	next.EXPECT().
		FindByKey(gomock.Any(), "FOO-0001-0002-0003").
		Return(&model.License{Key: "FOO-0001-0002-0003", Status: model.StatusActive}, nil).
		Times(1)

	r, err := New(next, time.Minute, helper.NewLogger())
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()

	first, err := r.FindByKey(ctx, "foo-0001-0002-0003")
	require.NoError(t, err)
	r.Wait()

	second, err := r.FindByKey(ctx, "FOO-0001-0002-0003")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNotFoundIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := store.NewMockRepository(ctrl)

	next.EXPECT().FindByKey(gomock.Any(), "MISSING").Return(nil, store.ErrNotFound).Times(2)

	r, err := New(next, time.Minute, helper.NewLogger())
	require.NoError(t, err)
	defer r.Close()

	for i := 0; i < 2; i++ {
		_, err := r.FindByKey(context.Background(), "MISSING")
		assert.ErrorIs(t, err, store.ErrNotFound)
		r.Wait()
	}
}

func TestCompareAndSwapEvicts(t *testing.T) {
	mem := store.NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, mem.Create(ctx, &model.License{Key: "K", Status: model.StatusActive}))

	r, err := New(mem, time.Minute, helper.NewLogger())
	require.NoError(t, err)
	defer r.Close()

	got, err := r.FindByKey(ctx, "K")
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, got.Status)
	r.Wait()

	ok, err := r.CompareAndSwap(ctx, model.StatusActive, &model.License{Key: "K", Status: model.StatusRevoked})
	require.NoError(t, err)
	require.True(t, ok)
	r.Wait()

	got, err = r.FindByKey(ctx, "K")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRevoked, got.Status)
}

func TestExpireActiveClears(t *testing.T) {
	mem := store.NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, mem.Create(ctx, &model.License{Key: "K", Status: model.StatusActive, ExpiresAt: now.Add(-time.Second)}))

	logger := helper.NewLogger()

	r, err := New(mem, time.Minute, logger)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.FindByKey(ctx, "K")
	require.NoError(t, err)
	r.Wait()

	n, err := r.ExpireActive(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := r.FindByKey(ctx, "K")
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, got.Status)
	assert.True(t, logger.Contains("DEBUG", "Cleared license cache"))
}

// pausingRepository holds its first FindByKey between the store read and the
// return, so a write can land while the lookup is in flight.
type pausingRepository struct {
	store.Repository

	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newPausingRepository(next store.Repository) *pausingRepository {
	return &pausingRepository{
		Repository: next,
		read:       make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (p *pausingRepository) FindByKey(ctx context.Context, key string) (*model.License, error) {
	l, err := p.Repository.FindByKey(ctx, key)

	p.once.Do(func() {
		close(p.read)
		<-p.release
	})

	return l, err
}

func TestLookupOverlappingRevokeIsNotCached(t *testing.T) {
	mem := store.NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, mem.Create(ctx, &model.License{Key: "K", Status: model.StatusActive}))

	slow := newPausingRepository(mem)

	r, err := New(slow, time.Minute, helper.NewLogger())
	require.NoError(t, err)
	defer r.Close()

	done := make(chan *model.License)

	go func() {
		l, err := r.FindByKey(ctx, "K")
		assert.NoError(t, err)
		done <- l
	}()

	<-slow.read

	ok, err := r.CompareAndSwap(ctx, model.StatusActive, &model.License{Key: "K", Status: model.StatusRevoked})
	require.NoError(t, err)
	require.True(t, ok)

	close(slow.release)

	stale := <-done
	assert.Equal(t, model.StatusActive, stale.Status)
	r.Wait()

	got, err := r.FindByKey(ctx, "K")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRevoked, got.Status)
}

func TestLookupOverlappingExpirySweepIsNotCached(t *testing.T) {
	mem := store.NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, mem.Create(ctx, &model.License{Key: "K", Status: model.StatusActive, ExpiresAt: now.Add(-time.Second)}))

	slow := newPausingRepository(mem)

	r, err := New(slow, time.Minute, helper.NewLogger())
	require.NoError(t, err)
	defer r.Close()

	done := make(chan struct{})

	go func() {
		defer close(done)

		_, err := r.FindByKey(ctx, "K")
		assert.NoError(t, err)
	}()

	<-slow.read

	n, err := r.ExpireActive(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	close(slow.release)
	<-done
	r.Wait()

	got, err := r.FindByKey(ctx, "K")
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, got.Status)
}

func TestPrimarySkipsCache(t *testing.T) {
	mem := store.NewMemoryRepository()

	r, err := New(mem, time.Minute, helper.NewLogger())
	require.NoError(t, err)
	defer r.Close()

	assert.Same(t, mem, r.Primary())
}
