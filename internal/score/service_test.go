package score

import (
	"context"
	"testing"

	"github.com/Party4Bread/academy-core-go/internal/score/entity"
)

// fakeSource mirrors the storage contract in memory: one output row per
// known student, sums defaulting to zero when nothing joins, each
// distinct solved problem counted once.
type fakeSource struct {
	students []entity.StudentScore
	problems map[string]*entity.Problem
	answers  []*entity.AnswerLog
	manual   []*entity.ManualScore
}

func newFakeSource(studentIDs ...string) *fakeSource {
	f := &fakeSource{problems: map[string]*entity.Problem{}}
	for _, id := range studentIDs {
		f.students = append(f.students, entity.StudentScore{ID: id, StudentID: id, Name: "student " + id})
	}
	return f
}

func (f *fakeSource) CreateProblem(_ context.Context, p *entity.Problem) error {
	cp := *p
	f.problems[p.ID] = &cp
	return nil
}

func (f *fakeSource) CreateAnswerLog(_ context.Context, a *entity.AnswerLog) error {
	cp := *a
	f.answers = append(f.answers, &cp)
	return nil
}

func (f *fakeSource) CreateManualScore(_ context.Context, m *entity.ManualScore) error {
	cp := *m
	f.manual = append(f.manual, &cp)
	return nil
}

func (f *fakeSource) AggregateStudentScores(_ context.Context) ([]entity.StudentScore, error) {
	out := make([]entity.StudentScore, 0, len(f.students))
	for _, s := range f.students {
		row := s
		for _, m := range f.manual {
			if m.StudentID == s.ID {
				row.AdditionalScore += m.Score
			}
		}
		solved := map[string]bool{}
		for _, a := range f.answers {
			if a.StudentID != s.ID || solved[a.ProblemID] {
				continue
			}
			solved[a.ProblemID] = true
			if p, ok := f.problems[a.ProblemID]; ok {
				row.ProbsScore += p.Score
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func TestScoresForStudentWithNoRecords(t *testing.T) {
	svc := NewService(nil, newFakeSource("stu-1"))

	rows, err := svc.ScoresForAllStudents(context.Background())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row per student, got %d", len(rows))
	}
	row := rows[0]
	if row.AdditionalScore != 0 || row.ProbsScore != 0 || row.Score != 0 {
		t.Fatalf("student with no records must score exactly 0, got %+v", row)
	}
}

func TestScoresSumManualAndSolved(t *testing.T) {
	src := newFakeSource("stu-1", "stu-2")
	svc := NewService(nil, src)
	ctx := context.Background()

	p1, err := svc.AddProblem(ctx, "two sum", 10)
	if err != nil {
		t.Fatalf("add problem: %v", err)
	}
	p2, err := svc.AddProblem(ctx, "binary search", 25)
	if err != nil {
		t.Fatalf("add problem: %v", err)
	}
	if _, err := svc.RecordAnswer(ctx, "stu-1", p1.ID); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	if _, err := svc.RecordAnswer(ctx, "stu-1", p2.ID); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	if _, err := svc.GrantScore(ctx, "stu-1", 7, "attendance"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if _, err := svc.GrantScore(ctx, "stu-1", 3, "homework"); err != nil {
		t.Fatalf("grant: %v", err)
	}

	rows, err := svc.ScoresForAllStudents(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	byID := map[string]entity.StudentScore{}
	for _, r := range rows {
		byID[r.ID] = r
	}

	got := byID["stu-1"]
	if got.AdditionalScore != 10 {
		t.Fatalf("additional_score = %d, want 10", got.AdditionalScore)
	}
	if got.ProbsScore != 35 {
		t.Fatalf("probs_score = %d, want 35", got.ProbsScore)
	}
	if got.Score != 45 {
		t.Fatalf("score = %d, want additional+probs = 45", got.Score)
	}

	// outer-join semantics: the untouched student still appears, at 0
	other := byID["stu-2"]
	if other.Score != 0 {
		t.Fatalf("unscored student must still yield a zero row, got %+v", other)
	}
}

func TestRepeatedSubmissionScoresOnce(t *testing.T) {
	src := newFakeSource("stu-1")
	svc := NewService(nil, src)
	ctx := context.Background()

	p, err := svc.AddProblem(ctx, "fibonacci", 10)
	if err != nil {
		t.Fatalf("add problem: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.RecordAnswer(ctx, "stu-1", p.ID); err != nil {
			t.Fatalf("record answer: %v", err)
		}
	}

	rows, err := svc.ScoresForAllStudents(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if rows[0].ProbsScore != 10 {
		t.Fatalf("probs_score = %d, want 10: a problem counts once however often it is resubmitted", rows[0].ProbsScore)
	}
}

func TestScoresRecomputedEachCall(t *testing.T) {
	src := newFakeSource("stu-1")
	svc := NewService(nil, src)
	ctx := context.Background()

	first, err := svc.ScoresForAllStudents(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if first[0].Score != 0 {
		t.Fatalf("expected 0, got %d", first[0].Score)
	}

	if _, err := svc.GrantScore(ctx, "stu-1", 5, "late bonus"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	second, err := svc.ScoresForAllStudents(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if second[0].Score != 5 {
		t.Fatalf("second invocation must see current state, got %d", second[0].Score)
	}
}
