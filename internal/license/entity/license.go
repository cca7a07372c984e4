package entity

import "time"

// DefaultNickname is applied when a license is created without one.
const DefaultNickname = "Random key"

// DefaultExpireTime is the far-future expiry applied when none is given.
var DefaultExpireTime = time.Date(2099, time.February, 1, 0, 0, 0, 0, time.UTC)

// License authorizes one academy's students to authenticate.
type License struct {
	ID           string    `db:"id" json:"id"`
	LicenseKey   string    `db:"license_key" json:"licenseKey"`
	Nickname     string    `db:"nickname" json:"nickname"`
	ExpireTime   time.Time `db:"expire_time" json:"expireTime"`
	LastUsedTime time.Time `db:"last_used_time" json:"lastUsedTime"`
	CreatedTime  time.Time `db:"created_time" json:"createdTime"`
}

// IsExpired reports whether the license expired before now.
func (l *License) IsExpired(now time.Time) bool {
	return l.ExpireTime.Before(now)
}
