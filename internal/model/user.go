package model

// Role is the authorization level of a console user. Admins manage the
// registry, ticket statuses, exports and stats; factory users only open
// tickets from the console.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFactory Role = "factory"
)

// IsAdmin reports whether the role may perform guarded operations.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// User is a console account. Passwords are stored as bcrypt hashes.
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:80;not null"`
	PasswordHash string `gorm:"size:200;not null"`
	Role         Role   `gorm:"size:20;not null;default:factory"`
}
