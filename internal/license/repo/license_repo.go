package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Party4Bread/academy-core-go/internal/license/entity"
)

// LicenseRepo provides data access for the licenses table using sqlx.
type LicenseRepo struct {
	db *sqlx.DB
}

func NewLicenseRepo(db *sqlx.DB) *LicenseRepo { return &LicenseRepo{db: db} }

// EnsureTable creates the licenses table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *LicenseRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS licenses (
  id varchar(32) PRIMARY KEY,
  license_key TEXT NOT NULL UNIQUE,
  nickname TEXT NOT NULL DEFAULT 'Random key',
  expire_time TIMESTAMPTZ NOT NULL,
  last_used_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  created_time TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new license row.
func (r *LicenseRepo) Create(ctx context.Context, l *entity.License) error {
	const q = `INSERT INTO licenses (id, license_key, nickname, expire_time, last_used_time, created_time)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q, l.ID, l.LicenseKey, l.Nickname, l.ExpireTime, l.LastUsedTime, l.CreatedTime)
	return err
}

// GetByKey returns the license matching the exact key or sql.ErrNoRows.
func (r *LicenseRepo) GetByKey(ctx context.Context, key string) (*entity.License, error) {
	const q = `SELECT id, license_key, nickname, expire_time, last_used_time, created_time
		FROM licenses WHERE license_key = $1`
	var row entity.License
	if err := r.db.GetContext(ctx, &row, q, key); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByID fetches a license by its identity.
func (r *LicenseRepo) GetByID(ctx context.Context, id string) (*entity.License, error) {
	const q = `SELECT id, license_key, nickname, expire_time, last_used_time, created_time
		FROM licenses WHERE id = $1`
	var row entity.License
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// TouchUsage sets last_used_time to now and returns the updated row.
func (r *LicenseRepo) TouchUsage(ctx context.Context, id string) (*entity.License, error) {
	const q = `UPDATE licenses SET last_used_time = NOW() WHERE id = $1
		RETURNING id, license_key, nickname, expire_time, last_used_time, created_time`
	var row entity.License
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}
