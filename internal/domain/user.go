package domain

import "time"

// Role enumerates permission levels for accounts.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleUser  Role = "user"
)

// IsValid reports whether the role is a known value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleUser:
		return true
	}
	return false
}

// IsPrivileged reports whether the role may manage enquiry workflow fields
// (status and assignment).
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleStaff
}

// User is the domain model for accounts, covering both dashboard operators
// (admin/staff) and self-registered customers.
type User struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	Role            Role
	IsActive        bool
	HasSeenTutorial bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
