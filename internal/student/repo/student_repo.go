package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Party4Bread/academy-core-go/internal/student/entity"
)

// StudentRepo provides data access for the students table using sqlx.
type StudentRepo struct {
	db *sqlx.DB
}

func NewStudentRepo(db *sqlx.DB) *StudentRepo { return &StudentRepo{db: db} }

// EnsureTable creates the students table if not exists (idempotent).
// The UNIQUE (student_id, academy_id) index is the storage backstop for
// the service's lookup-before-insert: two concurrent creates for the
// same pair can both pass the lookup, only one insert wins.
func (r *StudentRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS students (
  id varchar(32) PRIMARY KEY,
  student_id TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  academy_id varchar(32) NOT NULL REFERENCES academies(id),
  name TEXT NOT NULL DEFAULT 'DefaultUserName',
  email TEXT NOT NULL DEFAULT '',
  last_login_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  created_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  UNIQUE (student_id, academy_id)
);
CREATE INDEX IF NOT EXISTS idx_students_academy_id ON students (academy_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new student row.
func (r *StudentRepo) Create(ctx context.Context, s *entity.Student) error {
	const q = `INSERT INTO students (id, student_id, password_hash, academy_id, name, email, last_login_time, created_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.StudentID, s.PasswordHash, s.AcademyID, s.Name, s.Email, s.LastLoginTime, s.CreatedTime)
	return err
}

// GetByID fetches a student, credential hash included.
func (r *StudentRepo) GetByID(ctx context.Context, id string) (*entity.Student, error) {
	const q = `SELECT id, student_id, password_hash, academy_id, name, email, last_login_time, created_time
		FROM students WHERE id = $1`
	var row entity.Student
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByStudentID performs the tenant-scoped lookup used by both login
// and the create-time uniqueness check. Returns sql.ErrNoRows on miss.
func (r *StudentRepo) GetByStudentID(ctx context.Context, studentID, academyID string) (*entity.Student, error) {
	const q = `SELECT id, student_id, password_hash, academy_id, name, email, last_login_time, created_time
		FROM students WHERE student_id = $1 AND academy_id = $2`
	var row entity.Student
	if err := r.db.GetContext(ctx, &row, q, studentID, academyID); err != nil {
		return nil, err
	}
	return &row, nil
}

// Update persists the mutable profile fields.
func (r *StudentRepo) Update(ctx context.Context, s *entity.Student) error {
	const q = `UPDATE students SET name = $2, email = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.Name, s.Email)
	return err
}

// UpdatePassword replaces the credential hash.
func (r *StudentRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	const q = `UPDATE students SET password_hash = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, hash)
	return err
}

// TouchLogin sets last_login_time to now and returns the updated row.
func (r *StudentRepo) TouchLogin(ctx context.Context, id string) (*entity.Student, error) {
	const q = `UPDATE students SET last_login_time = NOW() WHERE id = $1
		RETURNING id, student_id, password_hash, academy_id, name, email, last_login_time, created_time`
	var row entity.Student
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}
