// Package store defines the license persistence contract and an in-memory
// implementation. Status changes go through CompareAndSwap so two concurrent
// activations or revocations of one key cannot both win.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/keybox-dev/keybox-go/model"
)

var (
	// ErrNotFound is returned when no license exists for a key.
	ErrNotFound = errors.New("license not found")
	// ErrDuplicateKey is returned by Create when the key is already taken.
	ErrDuplicateKey = errors.New("license key already exists")
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// Repository persists licenses keyed by their normalized key.
type Repository interface {
	Create(ctx context.Context, l *model.License) error
	FindByKey(ctx context.Context, key string) (*model.License, error)
	// CompareAndSwap writes next's status, issuedAt and updatedAt only if the stored
	// status still equals expected. It reports whether the write happened.
	CompareAndSwap(ctx context.Context, expected model.Status, next *model.License) (bool, error)
	List(ctx context.Context) ([]*model.License, error)
	// ExpireActive moves every ACTIVE license whose deadline is before now to EXPIRED.
	ExpireActive(ctx context.Context, now time.Time) (int64, error)
}
