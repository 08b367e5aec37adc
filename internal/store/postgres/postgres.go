// Package postgres is the Postgres-backed license repository.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/keybox-dev/keybox-go/internal/store"
	"github.com/keybox-dev/keybox-go/model"
	"github.com/keybox-dev/keybox-go/pkg"
)

const uniqueViolation = "23505"

const selectColumns = `id, key, product_name, customer, duration, issued_at, expires_at, status, owner_id, created_at, updated_at`

// Open opens a Postgres connection using the given DSN. Caller must call Close when done.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Repository implements store.Repository on a licenses table.
type Repository struct {
	db *sql.DB
}

var _ store.Repository = (*Repository)(nil)

// NewRepository wraps an open database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, l *model.License) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO licenses (`+selectColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.ID, pkg.NormalizeKey(l.Key), l.ProductName, l.Customer, l.Duration,
		l.IssuedAt, l.ExpiresAt, string(l.Status), l.OwnerID, l.CreatedAt, l.UpdatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrDuplicateKey
	}

	return err
}

func (r *Repository) FindByKey(ctx context.Context, key string) (*model.License, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM licenses WHERE key = $1`, pkg.NormalizeKey(key))

	l, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}

	return l, err
}

func (r *Repository) CompareAndSwap(ctx context.Context, expected model.Status, next *model.License) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE licenses SET status = $1, issued_at = $2, updated_at = $3 WHERE key = $4 AND status = $5`,
		string(next.Status), next.IssuedAt, next.UpdatedAt, pkg.NormalizeKey(next.Key), string(expected),
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if n == 1 {
		return true, nil
	}

	// distinguish a lost race from a missing row
	if _, err := r.FindByKey(ctx, next.Key); err != nil {
		return false, err
	}

	return false, nil
}

func (r *Repository) List(ctx context.Context) ([]*model.License, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM licenses ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.License, 0)

	for rows.Next() {
		l, err := scan(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, l)
	}

	return out, rows.Err()
}

func (r *Repository) ExpireActive(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE licenses SET status = $1, updated_at = $2 WHERE status = $3 AND expires_at < $2`,
		string(model.StatusExpired), now, string(model.StatusActive),
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*model.License, error) {
	var (
		l      model.License
		status string
	)

	err := s.Scan(&l.ID, &l.Key, &l.ProductName, &l.Customer, &l.Duration,
		&l.IssuedAt, &l.ExpiresAt, &status, &l.OwnerID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}

	l.Status = model.Status(status)

	return &l, nil
}
