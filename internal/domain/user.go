package domain

import "time"

// Role grants access to parts of the helpdesk.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CanTriage reports whether the role may see and update every ticket.
func (r Role) CanTriage() bool {
	return r == RoleAdmin || r == RoleManager
}

// User is an account able to file tickets and, depending on role, administer the desk.
type User struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
}

// UserPatch carries optional profile changes; nil fields are left untouched.
type UserPatch struct {
	Name  *string
	Email *string
	Role  *Role
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID int64
	Email  string
	Role   Role
}
