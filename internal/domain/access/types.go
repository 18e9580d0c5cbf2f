package access

import "kashpages/internal/domain/users"

// Principal is the authenticated caller, passed explicitly into every component
// that needs to know who is acting.
type Principal struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Handle string `json:"handle"`
	Role   string `json:"role"`
	Plan   string `json:"plan"`
}

func (p Principal) IsZero() bool { return p.UserID == "" }

func (p Principal) IsAdmin() bool { return p.Role == users.RoleAdmin }

// CanModerate is true for admins and moderators.
func (p Principal) CanModerate() bool {
	return p.Role == users.RoleAdmin || p.Role == users.RoleModerator
}

// Owns reports whether p may edit a record owned by ownerID.
func (p Principal) Owns(ownerID string) bool {
	return !p.IsZero() && (p.UserID == ownerID || p.IsAdmin())
}

// FromUser builds the principal for a stored user.
func FromUser(u users.User) Principal {
	return Principal{UserID: u.ID, Email: u.Email, Handle: u.Handle, Role: u.Role, Plan: u.Plan}
}

type PublicMode string

const (
	PublicFull    PublicMode = "full"
	PublicLimited PublicMode = "limited"
)
