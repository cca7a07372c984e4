package repo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	acaentity "github.com/Party4Bread/academy-core-go/internal/academy/entity"
	acarepo "github.com/Party4Bread/academy-core-go/internal/academy/repo"
	licentity "github.com/Party4Bread/academy-core-go/internal/license/entity"
	licrepo "github.com/Party4Bread/academy-core-go/internal/license/repo"
	"github.com/Party4Bread/academy-core-go/internal/score/entity"
	stuentity "github.com/Party4Bread/academy-core-go/internal/student/entity"
	sturepo "github.com/Party4Bread/academy-core-go/internal/student/repo"
	"github.com/Party4Bread/academy-core-go/pkg/database"
	"github.com/Party4Bread/academy-core-go/pkg/utilities"
)

func openTestDB(t *testing.T) *sqlx.DB {
	url := os.Getenv("ACADEMY_CORE_TEST_DB")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("ACADEMY_CORE_TEST_DB or DATABASE_URL not set")
		return nil
	}
	db, err := database.Connect(database.Config{DSN: url, MaxConns: 2, Timeout: 5 * time.Second})
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	return db
}

// seedTenant creates a license, an academy bound to it and one student,
// all with fresh KSUIDs so runs do not collide.
func seedTenant(t *testing.T, ctx context.Context, db *sqlx.DB) (*acaentity.Academy, *stuentity.Student) {
	t.Helper()
	now := time.Now().UTC()

	licenses := licrepo.NewLicenseRepo(db)
	lic := &licentity.License{
		ID:           utilities.NewKSUID(),
		LicenseKey:   "it-" + utilities.NewKSUID(),
		Nickname:     licentity.DefaultNickname,
		ExpireTime:   licentity.DefaultExpireTime,
		LastUsedTime: now,
		CreatedTime:  now,
	}
	if err := licenses.Create(ctx, lic); err != nil {
		t.Fatalf("seed license: %v", err)
	}

	academies := acarepo.NewAcademyRepo(db)
	aca := &acaentity.Academy{
		ID:            utilities.NewKSUID(),
		AcademyName:   "integration academy",
		LastLoginTime: now,
		CreatedTime:   now,
	}
	if err := academies.Create(ctx, aca); err != nil {
		t.Fatalf("seed academy: %v", err)
	}
	if err := academies.SetLicense(ctx, aca.ID, lic.ID); err != nil {
		t.Fatalf("bind license: %v", err)
	}

	students := sturepo.NewStudentRepo(db)
	stu := &stuentity.Student{
		ID:            utilities.NewKSUID(),
		StudentID:     "it-" + utilities.NewKSUID(),
		PasswordHash:  "h:unused",
		AcademyID:     aca.ID,
		Name:          stuentity.DefaultName,
		LastLoginTime: now,
		CreatedTime:   now,
	}
	if err := students.Create(ctx, stu); err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return aca, stu
}

func ensureSchema(t *testing.T, ctx context.Context, db *sqlx.DB) {
	t.Helper()
	if err := licrepo.NewLicenseRepo(db).EnsureTable(ctx); err != nil {
		t.Fatalf("ensure licenses: %v", err)
	}
	if err := acarepo.NewAcademyRepo(db).EnsureTable(ctx); err != nil {
		t.Fatalf("ensure academies: %v", err)
	}
	if err := sturepo.NewStudentRepo(db).EnsureTable(ctx); err != nil {
		t.Fatalf("ensure students: %v", err)
	}
	if err := NewScoreRepo(db).EnsureTables(ctx); err != nil {
		t.Fatalf("ensure score tables: %v", err)
	}
}

func TestStudentUniquenessBackstop(t *testing.T) {
	db := openTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()
	ctx := context.Background()
	ensureSchema(t, ctx, db)

	_, stu := seedTenant(t, ctx, db)

	dup := *stu
	dup.ID = utilities.NewKSUID()
	err := sturepo.NewStudentRepo(db).Create(ctx, &dup)
	if err == nil {
		t.Fatalf("storage must reject a duplicate (studentID, academy) pair")
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestAggregateStudentScores(t *testing.T) {
	db := openTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()
	ctx := context.Background()
	ensureSchema(t, ctx, db)

	_, scored := seedTenant(t, ctx, db)
	_, unscored := seedTenant(t, ctx, db)

	scores := NewScoreRepo(db)
	now := time.Now().UTC()

	p1 := &entity.Problem{ID: utilities.NewKSUID(), Title: "fizzbuzz", Score: 10, CreatedTime: now}
	p2 := &entity.Problem{ID: utilities.NewKSUID(), Title: "dijkstra", Score: 30, CreatedTime: now}
	for _, p := range []*entity.Problem{p1, p2} {
		if err := scores.CreateProblem(ctx, p); err != nil {
			t.Fatalf("create problem: %v", err)
		}
	}
	// p1 submitted twice: resubmission must not double its score
	for _, pid := range []string{p1.ID, p1.ID, p2.ID} {
		if err := scores.CreateAnswerLog(ctx, &entity.AnswerLog{
			ID: utilities.NewKSUID(), StudentID: scored.ID, ProblemID: pid, SubmittedTime: now,
		}); err != nil {
			t.Fatalf("create answer log: %v", err)
		}
	}
	for _, pts := range []int{7, 3} {
		if err := scores.CreateManualScore(ctx, &entity.ManualScore{
			ID: utilities.NewKSUID(), StudentID: scored.ID, Score: pts, CreatedTime: now,
		}); err != nil {
			t.Fatalf("create manual score: %v", err)
		}
	}

	rows, err := scores.AggregateStudentScores(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	byID := map[string]entity.StudentScore{}
	for _, r := range rows {
		byID[r.ID] = r
	}

	got, ok := byID[scored.ID]
	if !ok {
		t.Fatalf("scored student missing from aggregation")
	}
	if got.AdditionalScore != 10 || got.ProbsScore != 40 {
		t.Fatalf("sums = (%d, %d), want (10, 40) with the duplicate submission counted once",
			got.AdditionalScore, got.ProbsScore)
	}

	zero, ok := byID[unscored.ID]
	if !ok {
		t.Fatalf("left-outer join must keep the unscored student")
	}
	if zero.AdditionalScore != 0 || zero.ProbsScore != 0 {
		t.Fatalf("unscored student sums = (%d, %d), want (0, 0)", zero.AdditionalScore, zero.ProbsScore)
	}
}
