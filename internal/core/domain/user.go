package domain

import "strings"

// Role is the coarse authorization level of the signed-in user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a stored or remote role string to a Role. Anything it does not
// recognise becomes RoleUser, the least-privileged role.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// User is the identity returned by the backend on login.
type User struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Prenom string `json:"prenom,omitempty"`
	Nom    string `json:"nom,omitempty"`
}

// DisplayName joins first and last name, falling back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.Prenom) + " " + strings.TrimSpace(u.Nom))
	if name == "" {
		return u.Email
	}
	return name
}

// Valid reports whether the user carries the minimum the session needs.
func (u User) Valid() bool {
	return u.ID > 0 && strings.TrimSpace(u.Email) != ""
}

// AuthState is the published view of "who is signed in".
//
// IsAuthenticated is true iff CurrentUser is non-nil, and Role always mirrors
// CurrentUser.Role (RoleUser when signed out). Build values with SignedOut and
// SignedIn rather than by hand.
type AuthState struct {
	IsAuthenticated bool  `json:"is_authenticated"`
	CurrentUser     *User `json:"current_user,omitempty"`
	Role            Role  `json:"role"`
}

// SignedOut returns the default, unauthenticated state.
func SignedOut() AuthState {
	return AuthState{Role: RoleUser}
}

// SignedIn returns an authenticated state for u.
func SignedIn(u User) AuthState {
	return AuthState{
		IsAuthenticated: true,
		CurrentUser:     &u,
		Role:            ParseRole(u.Role),
	}
}

// Equal compares two states by value, including the current user.
func (s AuthState) Equal(o AuthState) bool {
	if s.IsAuthenticated != o.IsAuthenticated || s.Role != o.Role {
		return false
	}
	if s.CurrentUser == nil || o.CurrentUser == nil {
		return s.CurrentUser == o.CurrentUser
	}
	return *s.CurrentUser == *o.CurrentUser
}

// Clone returns a copy that shares no memory with s.
func (s AuthState) Clone() AuthState {
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		s.CurrentUser = &u
	}
	return s
}
