package user

import (
	"time"

	"github.com/google/uuid"
)

// Role defines the two actor kinds the system recognizes.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

// IsValidRole reports whether the string is a known role.
func IsValidRole(role string) bool {
	return role == string(RoleAdmin) || role == string(RoleStaff)
}

// User represents an authenticated actor (admin or staff).
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Summary is the minimal actor view embedded in audit log listings.
type Summary struct {
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}
