package license

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Party4Bread/academy-core-go/internal/license/entity"
	licrepo "github.com/Party4Bread/academy-core-go/internal/license/repo"
	"github.com/Party4Bread/academy-core-go/pkg/utilities"
)

// sentinel errors for common failure modes
var (
	ErrNotFound      = errors.New("license not found")
	ErrMissingFields = errors.New("licenseKey is required")
)

// Store is the subset of the repository the service relies on.
type Store interface {
	Create(ctx context.Context, l *entity.License) error
	GetByKey(ctx context.Context, key string) (*entity.License, error)
	GetByID(ctx context.Context, id string) (*entity.License, error)
	TouchUsage(ctx context.Context, id string) (*entity.License, error)
}

// Service is the license ledger: it validates keys, resolves them to
// license records and tracks usage.
type Service struct {
	store Store
}

func NewService(db *sqlx.DB, s Store) *Service {
	if s == nil {
		s = licrepo.NewLicenseRepo(db)
	}
	return &Service{store: s}
}

// Create registers a new license applying defaults for nickname and
// expiry. Creation is administrative; this core never deletes licenses.
func (s *Service) Create(ctx context.Context, key, nickname string, expireTime time.Time) (*entity.License, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrMissingFields
	}
	if nickname == "" {
		nickname = entity.DefaultNickname
	}
	if expireTime.IsZero() {
		expireTime = entity.DefaultExpireTime
	}
	now := time.Now().UTC()
	l := &entity.License{
		ID:           utilities.NewKSUID(),
		LicenseKey:   key,
		Nickname:     nickname,
		ExpireTime:   expireTime,
		LastUsedTime: now,
		CreatedTime:  now,
	}
	if err := s.store.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create license: %w", err)
	}
	return l, nil
}

// FindByKey resolves an exact license key. Absence is ErrNotFound,
// never a distinct error path.
func (s *Service) FindByKey(ctx context.Context, key string) (*entity.License, error) {
	l, err := s.store.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// TouchUsage stamps last_used_time with now, persists and returns the
// updated record.
func (s *Service) TouchUsage(ctx context.Context, id string) (*entity.License, error) {
	l, err := s.store.TouchUsage(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}
