package entity

import "time"

// Problem is a scored exercise. Answer logs reference it.
type Problem struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Score       int       `db:"score" json:"score"`
	CreatedTime time.Time `db:"created_time" json:"createdTime"`
}

// AnswerLog records a student solving a problem.
type AnswerLog struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student"`
	ProblemID     string    `db:"problem_id" json:"problem"`
	SubmittedTime time.Time `db:"submitted_time" json:"submittedTime"`
}

// ManualScore is a score granted by hand, outside problem solving.
type ManualScore struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student"`
	Score       int       `db:"score" json:"score"`
	Reason      string    `db:"reason" json:"reason"`
	CreatedTime time.Time `db:"created_time" json:"createdTime"`
}

// StudentScore is the derived per-student view: the student's fields
// plus the two partial sums and their total. It is computed on demand
// and never persisted.
type StudentScore struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"studentID"`
	AcademyID       string    `db:"academy_id" json:"academy"`
	Name            string    `db:"name" json:"name"`
	Email           string    `db:"email" json:"email"`
	LastLoginTime   time.Time `db:"last_login_time" json:"lastLoginTime"`
	CreatedTime     time.Time `db:"created_time" json:"createdTime"`
	AdditionalScore int       `db:"additional_score" json:"additional_score"`
	ProbsScore      int       `db:"probs_score" json:"probs_score"`
	Score           int       `db:"-" json:"score"`
}
