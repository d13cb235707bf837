package session

import "strings"

// Role is the actor's authorization role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole normalizes a role string. Anything but "admin" is a regular user.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// Identity describes the authenticated actor.
type Identity struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Phone  string `json:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Credentials are submitted by the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) valid() bool {
	return strings.TrimSpace(c.Email) != "" && c.Password != ""
}

// State is a snapshot of the session store.
type State struct {
	Authenticated bool      `json:"authenticated"`
	User          *Identity `json:"user"`
	AuthLoading   bool      `json:"auth_loading"`
	IsInitialized bool      `json:"is_initialized"`
}

// IsAdmin reports whether the snapshot belongs to an authenticated admin.
func (s State) IsAdmin() bool {
	return s.Authenticated && s.User != nil && s.User.IsAdmin()
}

// Role returns the actor's role, or an empty role for anonymous visitors.
func (s State) Role() Role {
	if !s.Authenticated || s.User == nil {
		return ""
	}
	return s.User.Role
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
