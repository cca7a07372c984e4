package score

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Party4Bread/academy-core-go/internal/score/entity"
	scorepo "github.com/Party4Bread/academy-core-go/internal/score/repo"
	"github.com/Party4Bread/academy-core-go/pkg/utilities"
)

// Source is the subset of the repository the service relies on.
type Source interface {
	CreateProblem(ctx context.Context, p *entity.Problem) error
	CreateAnswerLog(ctx context.Context, a *entity.AnswerLog) error
	CreateManualScore(ctx context.Context, m *entity.ManualScore) error
	AggregateStudentScores(ctx context.Context) ([]entity.StudentScore, error)
}

// Service computes the derived per-student score view.
type Service struct {
	source Source
}

func NewService(db *sqlx.DB, s Source) *Service {
	if s == nil {
		s = scorepo.NewScoreRepo(db)
	}
	return &Service{source: s}
}

// ScoresForAllStudents returns one row per student: additional_score
// is the sum of manual scores, probs_score the sum over distinct
// solved problems, score their total. Missing records default the
// sums to 0.
// Every call recomputes from current storage state; nothing is cached.
func (s *Service) ScoresForAllStudents(ctx context.Context) ([]entity.StudentScore, error) {
	rows, err := s.source.AggregateStudentScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate scores: %w", err)
	}
	for i := range rows {
		rows[i].Score = rows[i].AdditionalScore + rows[i].ProbsScore
	}
	return rows, nil
}

// AddProblem registers a problem worth the given score.
func (s *Service) AddProblem(ctx context.Context, title string, points int) (*entity.Problem, error) {
	p := &entity.Problem{
		ID:          utilities.NewKSUID(),
		Title:       title,
		Score:       points,
		CreatedTime: time.Now().UTC(),
	}
	if err := s.source.CreateProblem(ctx, p); err != nil {
		return nil, fmt.Errorf("create problem: %w", err)
	}
	return p, nil
}

// RecordAnswer logs that a student solved a problem.
func (s *Service) RecordAnswer(ctx context.Context, studentID, problemID string) (*entity.AnswerLog, error) {
	a := &entity.AnswerLog{
		ID:            utilities.NewKSUID(),
		StudentID:     studentID,
		ProblemID:     problemID,
		SubmittedTime: time.Now().UTC(),
	}
	if err := s.source.CreateAnswerLog(ctx, a); err != nil {
		return nil, fmt.Errorf("create answer log: %w", err)
	}
	return a, nil
}

// GrantScore adds a manual score for a student.
func (s *Service) GrantScore(ctx context.Context, studentID string, points int, reason string) (*entity.ManualScore, error) {
	m := &entity.ManualScore{
		ID:          utilities.NewKSUID(),
		StudentID:   studentID,
		Score:       points,
		Reason:      reason,
		CreatedTime: time.Now().UTC(),
	}
	if err := s.source.CreateManualScore(ctx, m); err != nil {
		return nil, fmt.Errorf("create manual score: %w", err)
	}
	return m, nil
}
