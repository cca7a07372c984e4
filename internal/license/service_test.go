package license

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Party4Bread/academy-core-go/internal/license/entity"
)

type fakeStore struct {
	byID  map[string]*entity.License
	byKey map[string]*entity.License
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]*entity.License{}, byKey: map[string]*entity.License{}}
}

func (f *fakeStore) Create(_ context.Context, l *entity.License) error {
	cp := *l
	f.byID[l.ID] = &cp
	f.byKey[l.LicenseKey] = &cp
	return nil
}

func (f *fakeStore) GetByKey(_ context.Context, key string) (*entity.License, error) {
	l, ok := f.byKey[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*entity.License, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) TouchUsage(_ context.Context, id string) (*entity.License, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	l.LastUsedTime = time.Now().UTC()
	cp := *l
	return &cp, nil
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := NewService(nil, newFakeStore())

	l, err := svc.Create(context.Background(), "LIC-1", "", time.Time{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.ID == "" {
		t.Fatalf("expected generated id")
	}
	if l.Nickname != entity.DefaultNickname {
		t.Fatalf("nickname = %q, want %q", l.Nickname, entity.DefaultNickname)
	}
	if !l.ExpireTime.Equal(entity.DefaultExpireTime) {
		t.Fatalf("expireTime = %v, want %v", l.ExpireTime, entity.DefaultExpireTime)
	}
}

func TestCreateRequiresKey(t *testing.T) {
	svc := NewService(nil, newFakeStore())
	if _, err := svc.Create(context.Background(), "   ", "", time.Time{}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
}

func TestFindByKeyAbsenceIsNotFound(t *testing.T) {
	svc := NewService(nil, newFakeStore())
	if _, err := svc.FindByKey(context.Background(), "no-such-key"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTouchUsageAdvancesLastUsedTime(t *testing.T) {
	store := newFakeStore()
	svc := NewService(nil, store)

	created, err := svc.Create(context.Background(), "LIC-1", "front desk", time.Time{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.byID[created.ID].LastUsedTime = created.LastUsedTime.Add(-time.Hour)

	touched, err := svc.TouchUsage(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if !touched.LastUsedTime.After(created.LastUsedTime.Add(-time.Hour)) {
		t.Fatalf("lastUsedTime did not advance")
	}
}

func TestIsExpired(t *testing.T) {
	l := &entity.License{
		LicenseKey: "LIC-1",
		ExpireTime: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if !l.IsExpired(time.Now()) {
		t.Fatalf("license expiring 2020-01-01 must be expired today")
	}
	if l.IsExpired(time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("license must not be expired before its expireTime")
	}
	fresh := &entity.License{ExpireTime: entity.DefaultExpireTime}
	if fresh.IsExpired(time.Now()) {
		t.Fatalf("default expiry is far future")
	}
}
