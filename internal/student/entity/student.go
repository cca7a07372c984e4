package entity

import "time"

// DefaultName is applied when a student is created without a name.
const DefaultName = "DefaultUserName"

// Student is a tenant-scoped account. PasswordHash is write-only from
// the API's perspective: it is excluded from JSON and from View, and
// only the student service ever reads it.
type Student struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"studentID"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	AcademyID     string    `db:"academy_id" json:"academy"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	LastLoginTime time.Time `db:"last_login_time" json:"lastLoginTime"`
	CreatedTime   time.Time `db:"created_time" json:"createdTime"`
}

// View is the external-facing representation of a student. It has no
// password field at all, so no serialization path can leak the hash.
type View struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"studentID"`
	AcademyID     string    `json:"academy"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	LastLoginTime time.Time `json:"lastLoginTime"`
	CreatedTime   time.Time `json:"createdTime"`
}

// Serialize strips the credential hash. Every boundary that returns a
// student to a caller must go through this.
func (s *Student) Serialize() View {
	return View{
		ID:            s.ID,
		StudentID:     s.StudentID,
		AcademyID:     s.AcademyID,
		Name:          s.Name,
		Email:         s.Email,
		LastLoginTime: s.LastLoginTime,
		CreatedTime:   s.CreatedTime,
	}
}
