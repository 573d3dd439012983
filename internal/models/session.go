package models

// Role is the operator role attached to a session.
type Role string

const (
	RoleSuper Role = "SUPER"
	RoleAdmin Role = "ADMIN"
)

// Session is the signed-in operator context. BusinessID is only set for
// admins, including a super user impersonating a business.
type Session struct {
	Role          Role   `json:"role"`
	BusinessID    string `json:"businessId,omitempty"`
	Impersonating bool   `json:"impersonating,omitempty"`
}

// IsSuper reports whether the session has platform-wide access.
func (s Session) IsSuper() bool {
	return s.Role == RoleSuper
}
