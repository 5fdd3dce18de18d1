package user

import "time"

type Role string

const (
	RoleAdmin Role = "ADMIN" // Approves requests, manages inventory and projects
	RoleUser  Role = "USER"  // Regular employee
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           string
	Email        string
	PasswordHash *string
	FullName     string
	Role         Role
	Department   *string
	Designation  *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user can approve requests and manage inventory
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
