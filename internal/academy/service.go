package academy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Party4Bread/academy-core-go/internal/academy/entity"
	acarepo "github.com/Party4Bread/academy-core-go/internal/academy/repo"
	"github.com/Party4Bread/academy-core-go/internal/token"
	"github.com/Party4Bread/academy-core-go/pkg/utilities"
)

// sentinel errors for common failure modes
var (
	ErrNotFound      = errors.New("academy not found")
	ErrMissingFields = errors.New("academyName is required")
	ErrInvalidField  = errors.New("field not allowed in patch")
)

// allowedPatchFields is the explicit whitelist for ChangeInfo. Identity
// and license binding are never patchable through it.
var allowedPatchFields = map[string]bool{
	"academyName": true,
	"email":       true,
}

// Store is the subset of the repository the service relies on.
type Store interface {
	Create(ctx context.Context, a *entity.Academy) error
	GetByID(ctx context.Context, id string) (*entity.Academy, error)
	GetByLicenseID(ctx context.Context, licenseID string) (*entity.Academy, error)
	Update(ctx context.Context, a *entity.Academy) error
	SetLicense(ctx context.Context, id, licenseID string) error
}

// Service is the academy directory. It is stateless: one instance per
// process, holding only the storage handle and the token signer.
type Service struct {
	store  Store
	signer *token.Signer
}

func NewService(db *sqlx.DB, s Store, signer *token.Signer) *Service {
	if s == nil {
		s = acarepo.NewAcademyRepo(db)
	}
	if signer == nil {
		signer = token.NewSigner(token.ConfigFromEnv())
	}
	return &Service{store: s, signer: signer}
}

// Create registers a new academy (administrative).
func (s *Service) Create(ctx context.Context, academyName, email string) (*entity.Academy, error) {
	academyName = strings.TrimSpace(academyName)
	if academyName == "" {
		return nil, ErrMissingFields
	}
	now := time.Now().UTC()
	a := &entity.Academy{
		ID:            utilities.NewKSUID(),
		AcademyName:   academyName,
		Email:         email,
		LastLoginTime: now,
		CreatedTime:   now,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create academy: %w", err)
	}
	return a, nil
}

// GetByID resolves an academy by identity.
func (s *Service) GetByID(ctx context.Context, id string) (*entity.Academy, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// FindByLicense returns the academy owning the given license identity.
func (s *Service) FindByLicense(ctx context.Context, licenseID string) (*entity.Academy, error) {
	a, err := s.store.GetByLicenseID(ctx, licenseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// AssignLicense binds a license to the academy. At most one license per
// academy (single column) and one academy per license (unique index).
func (s *Service) AssignLicense(ctx context.Context, academyID, licenseID string) (*entity.Academy, error) {
	if err := s.store.SetLicense(ctx, academyID, licenseID); err != nil {
		return nil, fmt.Errorf("assign license: %w", err)
	}
	return s.GetByID(ctx, academyID)
}

// ChangeInfo overwrites every allowed key present in patch and persists.
// Keys outside the whitelist are rejected outright so identity and the
// license binding cannot be overwritten through a profile update.
// A persistence failure propagates unretried.
func (s *Service) ChangeInfo(ctx context.Context, id string, patch map[string]any) (*entity.Academy, error) {
	for k := range patch {
		if !allowedPatchFields[k] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidField, k)
		}
	}
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v, ok := patch["academyName"]; ok {
		name, ok := v.(string)
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: academyName", ErrInvalidField)
		}
		a.AcademyName = name
	}
	if v, ok := patch["email"]; ok {
		email, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: email", ErrInvalidField)
		}
		a.Email = email
	}
	if err := s.store.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update academy: %w", err)
	}
	return a, nil
}

// IssueToken mints a signed token carrying this academy's claims.
func (s *Service) IssueToken(a *entity.Academy) (string, error) {
	return s.signer.IssueAcademy(a.ID, a.AcademyName)
}
