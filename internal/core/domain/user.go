package domain

import "time"

// TimeLayout is the layout used for created_at and last_login.
const TimeLayout = time.RFC3339

// legacyTimeLayout is accepted when reading timestamps written by the
// previous version of the service.
const legacyTimeLayout = "01/02/06 15:04:05"

// legacyLocation is the zone legacy timestamps are read in. They carry no
// offset and were written in the host's local time.
var legacyLocation = time.Local

// User models a registered account. PasswordHash never leaves the service.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Role         Role
	IsActive     string
	CreatedAt    string
	LastLogin    string
	PasswordHash string
}

// UserUpdate carries a partial update. Nil fields are left untouched.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Role      *Role
	IsActive  *string
	LastLogin *string
}

// IsEmpty reports whether the update sets no field at all.
func (u UserUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Role == nil &&
		u.IsActive == nil && u.LastLogin == nil
}

// FormatTime renders t in the stored timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a stored timestamp in either the current or legacy layout.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation(legacyTimeLayout, s, legacyLocation)
}
