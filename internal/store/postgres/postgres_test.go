package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/keybox-dev/keybox-go/internal/store"
	"github.com/keybox-dev/keybox-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInvalidDSN(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	db, err := Open(ctx, "postgres://user:pass@/db?connect_timeout=1&host=/nonexistent")
	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestMigrateEmptyDSN(t *testing.T) {
	assert.Error(t, Migrate(""))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// TestRepository runs against a real database when DATABASE_URL is set.
func TestRepository(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	require.NoError(t, Migrate(dsn))

	ctx := context.Background()

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	r := NewRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)
	key := "TST-" + uuid.NewString()[:4] + "-" + uuid.NewString()[:4] + "-0000"

	l := &model.License{
		ID:          uuid.New(),
		Key:         key,
		ProductName: "Foo",
		Customer:    "Bar",
		Duration:    1,
		IssuedAt:    now,
		ExpiresAt:   now.Add(-time.Minute),
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	require.NoError(t, r.Create(ctx, l))
	assert.ErrorIs(t, r.Create(ctx, l), store.ErrDuplicateKey)

	got, err := r.FindByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)

	ok, err := r.CompareAndSwap(ctx, model.StatusPending, &model.License{Key: key, Status: model.StatusActive, IssuedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.CompareAndSwap(ctx, model.StatusPending, &model.License{Key: key, Status: model.StatusRevoked, IssuedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := r.ExpireActive(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	got, err = r.FindByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, got.Status)

	_, err = r.FindByKey(ctx, "MISSING-KEY")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
