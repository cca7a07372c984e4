package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Party4Bread/academy-core-go/internal/score/entity"
)

// ScoreRepo provides data access for the three independent record
// collections (problems, answer logs, manual scores) and the
// aggregation over them, using sqlx.
type ScoreRepo struct {
	db *sqlx.DB
}

func NewScoreRepo(db *sqlx.DB) *ScoreRepo { return &ScoreRepo{db: db} }

// EnsureTables creates the record collections if not exists (idempotent).
func (r *ScoreRepo) EnsureTables(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS problems (
  id varchar(32) PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  score INT NOT NULL DEFAULT 0,
  created_time TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS answer_logs (
  id varchar(32) PRIMARY KEY,
  student_id varchar(32) NOT NULL REFERENCES students(id),
  problem_id varchar(32) NOT NULL REFERENCES problems(id),
  submitted_time TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_answer_logs_student_id ON answer_logs (student_id);
CREATE TABLE IF NOT EXISTS scores (
  id varchar(32) PRIMARY KEY,
  student_id varchar(32) NOT NULL REFERENCES students(id),
  score INT NOT NULL DEFAULT 0,
  reason TEXT NOT NULL DEFAULT '',
  created_time TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_scores_student_id ON scores (student_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// CreateProblem inserts a new problem row.
func (r *ScoreRepo) CreateProblem(ctx context.Context, p *entity.Problem) error {
	const q = `INSERT INTO problems (id, title, score, created_time) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, q, p.ID, p.Title, p.Score, p.CreatedTime)
	return err
}

// CreateAnswerLog inserts a new answer-log row.
func (r *ScoreRepo) CreateAnswerLog(ctx context.Context, a *entity.AnswerLog) error {
	const q = `INSERT INTO answer_logs (id, student_id, problem_id, submitted_time) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.StudentID, a.ProblemID, a.SubmittedTime)
	return err
}

// CreateManualScore inserts a new manual score row.
func (r *ScoreRepo) CreateManualScore(ctx context.Context, m *entity.ManualScore) error {
	const q = `INSERT INTO scores (id, student_id, score, reason, created_time) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.StudentID, m.Score, m.Reason, m.CreatedTime)
	return err
}

// AggregateStudentScores computes the two partial sums per student in
// staged sub-aggregates, left-joined to students so a student with no
// matching records still yields a row with zero sums. Answer logs are
// reduced to distinct (student, problem) pairs first, so submitting the
// same problem twice scores it once. The raw join artifacts stay inside
// this query; only the reduced sums come out.
func (r *ScoreRepo) AggregateStudentScores(ctx context.Context) ([]entity.StudentScore, error) {
	const q = `
SELECT s.id, s.student_id, s.academy_id, s.name, s.email, s.last_login_time, s.created_time,
       COALESCE(manual.total, 0) AS additional_score,
       COALESCE(solved.total, 0) AS probs_score
FROM students s
LEFT JOIN (
  SELECT student_id, SUM(score) AS total
  FROM scores
  GROUP BY student_id
) manual ON manual.student_id = s.id
LEFT JOIN (
  SELECT al.student_id, SUM(p.score) AS total
  FROM (SELECT DISTINCT student_id, problem_id FROM answer_logs) al
  JOIN problems p ON p.id = al.problem_id
  GROUP BY al.student_id
) solved ON solved.student_id = s.id
ORDER BY s.created_time, s.id`
	var rows []entity.StudentScore
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}
