package auth

import "time"

// UserContext is the authenticated caller attached to a request. Manager
// link holders have no user row; they carry only a role and ManagerCode.
type UserContext struct {
	UserID      string
	RoleID      string
	RoleName    string
	SessionID   string
	ManagerCode string
}

// Scope returns the manager code that restricts data access, or "" for
// unrestricted callers.
func (u UserContext) Scope() string {
	if u.RoleName == RoleManager {
		return u.ManagerCode
	}
	return ""
}

type AuthUser struct {
	ID       string
	RoleID   string
	RoleName string
	Email    string
	Password string
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	SessionID string    `json:"-"`
}

type ManagerLink struct {
	ManagerCode string    `json:"manager_code"`
	Token       string    `json:"token"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type WhoAmI struct {
	Role        string `json:"role"`
	ManagerCode string `json:"manager_code,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}
