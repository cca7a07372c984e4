package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Party4Bread/academy-core-go/internal/academy/entity"
)

// AcademyRepo provides data access for the academies table using sqlx.
type AcademyRepo struct {
	db *sqlx.DB
}

func NewAcademyRepo(db *sqlx.DB) *AcademyRepo { return &AcademyRepo{db: db} }

// EnsureTable creates the academies table if not exists (idempotent).
// license_id is UNIQUE so a license resolves to at most one academy,
// which keeps lookup-by-license well defined.
func (r *AcademyRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS academies (
  id varchar(32) PRIMARY KEY,
  academy_name TEXT NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  license_id varchar(32) UNIQUE REFERENCES licenses(id),
  last_login_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  created_time TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new academy row.
func (r *AcademyRepo) Create(ctx context.Context, a *entity.Academy) error {
	const q = `INSERT INTO academies (id, academy_name, email, license_id, last_login_time, created_time)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.AcademyName, a.Email, a.LicenseID, a.LastLoginTime, a.CreatedTime)
	return err
}

// GetByID fetches an academy by its identity.
func (r *AcademyRepo) GetByID(ctx context.Context, id string) (*entity.Academy, error) {
	const q = `SELECT id, academy_name, email, license_id, last_login_time, created_time
		FROM academies WHERE id = $1`
	var row entity.Academy
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByLicenseID returns the academy whose license reference equals the
// given license identity, or sql.ErrNoRows.
func (r *AcademyRepo) GetByLicenseID(ctx context.Context, licenseID string) (*entity.Academy, error) {
	const q = `SELECT id, academy_name, email, license_id, last_login_time, created_time
		FROM academies WHERE license_id = $1`
	var row entity.Academy
	if err := r.db.GetContext(ctx, &row, q, licenseID); err != nil {
		return nil, err
	}
	return &row, nil
}

// Update persists the mutable profile fields.
func (r *AcademyRepo) Update(ctx context.Context, a *entity.Academy) error {
	const q = `UPDATE academies SET academy_name = $2, email = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.AcademyName, a.Email)
	return err
}

// SetLicense binds a license to the academy. The UNIQUE constraint on
// license_id rejects binding one license to two academies.
func (r *AcademyRepo) SetLicense(ctx context.Context, id, licenseID string) error {
	const q = `UPDATE academies SET license_id = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, licenseID)
	return err
}
