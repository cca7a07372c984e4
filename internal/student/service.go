package student

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	acaentity "github.com/Party4Bread/academy-core-go/internal/academy/entity"
	"github.com/Party4Bread/academy-core-go/internal/crypto"
	licentity "github.com/Party4Bread/academy-core-go/internal/license/entity"

	"github.com/Party4Bread/academy-core-go/internal/academy"
	"github.com/Party4Bread/academy-core-go/internal/license"
	"github.com/Party4Bread/academy-core-go/internal/student/entity"
	sturepo "github.com/Party4Bread/academy-core-go/internal/student/repo"
	"github.com/Party4Bread/academy-core-go/internal/token"
	"github.com/Party4Bread/academy-core-go/pkg/utilities"
)

// sentinel errors for common failure modes
var (
	ErrNotFound      = errors.New("student not found")
	ErrMissingFields = errors.New("studentID, password and academy are required")
	ErrAlreadyExists = errors.New("account already exists")
	ErrInvalidField  = errors.New("field not allowed in patch")

	// ErrAuthFailed is the uniform rejection for every negative branch
	// of the login chain. Callers can not tell an unknown license from
	// an unknown student or a wrong password.
	ErrAuthFailed = errors.New("authentication failed")
)

// allowedPatchFields is the explicit whitelist for ChangeInfo.
// studentID, academy, the credential hash and identity stay protected.
var allowedPatchFields = map[string]bool{
	"name":  true,
	"email": true,
}

// PasswordHasher defines minimal hashing interface so tests can swap
// the CPU-heavy argon2id implementation out.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(digest, pw string) bool
}

// Argon2Hasher is the production hasher backed by internal/crypto.
type Argon2Hasher struct{}

func (Argon2Hasher) Hash(pw string) (string, error) { return crypto.HashPassword(pw) }
func (Argon2Hasher) Verify(digest, pw string) bool  { return crypto.VerifyPassword(digest, pw) }

// Store is the subset of the repository the service relies on.
type Store interface {
	Create(ctx context.Context, s *entity.Student) error
	GetByID(ctx context.Context, id string) (*entity.Student, error)
	GetByStudentID(ctx context.Context, studentID, academyID string) (*entity.Student, error)
	Update(ctx context.Context, s *entity.Student) error
	UpdatePassword(ctx context.Context, id, hash string) error
	TouchLogin(ctx context.Context, id string) (*entity.Student, error)
}

// LicenseDirectory resolves license keys to license records.
type LicenseDirectory interface {
	FindByKey(ctx context.Context, key string) (*licentity.License, error)
}

// AcademyDirectory resolves a license identity to its owning academy.
type AcademyDirectory interface {
	FindByLicense(ctx context.Context, licenseID string) (*acaentity.Academy, error)
}

// Service is the student directory and the login orchestrator. It is
// stateless apart from configuration knobs.
type Service struct {
	store     Store
	licenses  LicenseDirectory
	academies AcademyDirectory
	hasher    PasswordHasher
	signer    *token.Signer

	// EnforceLicenseExpiry gates the expiry check inside Authenticate.
	// Off by default: an expired license that still resolves to an
	// academy authenticates, matching the historical behavior.
	EnforceLicenseExpiry bool
}

func NewService(db *sqlx.DB, s Store, licenses LicenseDirectory, academies AcademyDirectory, hasher PasswordHasher, signer *token.Signer) *Service {
	if s == nil {
		s = sturepo.NewStudentRepo(db)
	}
	if licenses == nil {
		licenses = license.NewService(db, nil)
	}
	if academies == nil {
		academies = academy.NewService(db, nil, signer)
	}
	if hasher == nil {
		hasher = Argon2Hasher{}
	}
	if signer == nil {
		signer = token.NewSigner(token.ConfigFromEnv())
	}
	return &Service{store: s, licenses: licenses, academies: academies, hasher: hasher, signer: signer}
}

// CreateInput carries the account-creation fields. StudentID, Password
// and AcademyID are required; Name and Email get defaults.
type CreateInput struct {
	StudentID string
	Password  string
	AcademyID string
	Name      string
	Email     string
}

// CreateStudent validates required fields, rejects duplicates within
// the academy, hashes the password and persists the account. Validation
// failures never reach the store.
func (s *Service) CreateStudent(ctx context.Context, in CreateInput) (*entity.Student, error) {
	if in.StudentID == "" || in.Password == "" || in.AcademyID == "" {
		return nil, ErrMissingFields
	}

	// lookup-before-insert; the UNIQUE index backs up the race window
	if _, err := s.store.GetByStudentID(ctx, in.StudentID, in.AcademyID); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if in.Name == "" {
		in.Name = entity.DefaultName
	}
	now := time.Now().UTC()
	stu := &entity.Student{
		ID:            utilities.NewKSUID(),
		StudentID:     in.StudentID,
		PasswordHash:  hash,
		AcademyID:     in.AcademyID,
		Name:          in.Name,
		Email:         in.Email,
		LastLoginTime: now,
		CreatedTime:   now,
	}
	if err := s.store.Create(ctx, stu); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create student: %w", err)
	}
	return stu, nil
}

// FindByStudentID performs the tenant-scoped lookup.
func (s *Service) FindByStudentID(ctx context.Context, studentID, academyID string) (*entity.Student, error) {
	stu, err := s.store.GetByStudentID(ctx, studentID, academyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return stu, nil
}

// ResetPassword hashes the new plaintext, replaces the stored hash and
// returns the updated record.
func (s *Service) ResetPassword(ctx context.Context, id, newPassword string) (*entity.Student, error) {
	if newPassword == "" {
		return nil, ErrMissingFields
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, id, hash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	return s.getByID(ctx, id)
}

// ChangeInfo overwrites every allowed key present in patch and
// persists. Keys outside the whitelist are rejected outright so the
// credential hash, the studentID and the academy binding can not be
// overwritten through a profile update. A persistence failure
// propagates unretried.
func (s *Service) ChangeInfo(ctx context.Context, id string, patch map[string]any) (*entity.Student, error) {
	for k := range patch {
		if !allowedPatchFields[k] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidField, k)
		}
	}
	stu, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v, ok := patch["name"]; ok {
		name, ok := v.(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: name", ErrInvalidField)
		}
		stu.Name = name
	}
	if v, ok := patch["email"]; ok {
		email, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: email", ErrInvalidField)
		}
		stu.Email = email
	}
	if err := s.store.Update(ctx, stu); err != nil {
		return nil, fmt.Errorf("update student: %w", err)
	}
	return stu, nil
}

// IssueToken mints a signed token carrying this student's claims.
func (s *Service) IssueToken(stu *entity.Student) (string, error) {
	return s.signer.IssueStudent(stu.ID, stu.StudentID, stu.AcademyID, stu.LastLoginTime)
}

// Authenticate runs the single-pass login chain:
// license key -> license, license -> academy, (studentID, academy) ->
// student, password verify, then last_login_time is stamped and the
// updated record returned. Every negative branch collapses into
// ErrAuthFailed; only storage faults surface as themselves.
func (s *Service) Authenticate(ctx context.Context, studentID, licenseKey, password string) (*entity.Student, error) {
	lic, err := s.licenses.FindByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, license.ErrNotFound) {
			return nil, ErrAuthFailed
		}
		return nil, err
	}
	if s.EnforceLicenseExpiry && lic.IsExpired(time.Now()) {
		return nil, ErrAuthFailed
	}

	aca, err := s.academies.FindByLicense(ctx, lic.ID)
	if err != nil {
		if errors.Is(err, academy.ErrNotFound) {
			return nil, ErrAuthFailed
		}
		return nil, err
	}

	stu, err := s.store.GetByStudentID(ctx, studentID, aca.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuthFailed
		}
		return nil, err
	}

	if !s.hasher.Verify(stu.PasswordHash, password) {
		return nil, ErrAuthFailed
	}

	updated, err := s.store.TouchLogin(ctx, stu.ID)
	if err != nil {
		return nil, fmt.Errorf("touch login: %w", err)
	}
	return updated, nil
}

func (s *Service) getByID(ctx context.Context, id string) (*entity.Student, error) {
	stu, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return stu, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
