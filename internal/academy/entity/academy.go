package entity

import "time"

// Academy is a tenant. Each academy owns at most one license reference
// and is the uniqueness scope for its students' accounts.
type Academy struct {
	ID            string    `db:"id" json:"id"`
	AcademyName   string    `db:"academy_name" json:"academyName"`
	Email         string    `db:"email" json:"email"`
	LicenseID     *string   `db:"license_id" json:"license,omitempty"`
	LastLoginTime time.Time `db:"last_login_time" json:"lastLoginTime"`
	CreatedTime   time.Time `db:"created_time" json:"createdTime"`
}
