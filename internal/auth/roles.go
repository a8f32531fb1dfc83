package auth

import (
	"crypto/subtle"

	"flights_backend/internal/models"
)

// Role is the caller's privilege level as seen by the Authorization Gate.
type Role int

const (
	RoleAnonymous Role = iota
	RoleUser
	RoleModerator
	// RoleService is the trusted state-calculation service.
	RoleService
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleModerator:
		return "moderator"
	case RoleService:
		return "service"
	default:
		return "anonymous"
	}
}

// ParseRole is the inverse of String; unknown names map to RoleAnonymous.
func ParseRole(s string) Role {
	switch s {
	case "user":
		return RoleUser
	case "moderator":
		return RoleModerator
	case "service":
		return RoleService
	default:
		return RoleAnonymous
	}
}

// Identity is who is calling. The zero value is an anonymous caller.
type Identity struct {
	Role   Role
	UserID uint
	Name   string
}

// Anonymous is the identity of an unauthenticated request.
var Anonymous = Identity{}

// IdentityFor returns the identity of an authenticated user account.
func IdentityFor(u *models.User) Identity {
	role := RoleUser
	if u.IsModerator {
		role = RoleModerator
	}
	return Identity{Role: role, UserID: u.ID, Name: u.Name}
}

// ServiceIdentity is the identity of the trusted state-calculation service.
var ServiceIdentity = Identity{Role: RoleService, Name: "state-service"}

// IsUser reports whether the identity is a user account (moderators included).
func (i Identity) IsUser() bool {
	return i.UserID != 0 && (i.Role == RoleUser || i.Role == RoleModerator)
}

// HasRole reports whether the identity satisfies role. Moderators satisfy
// RoleUser; the service identity only satisfies RoleService.
func HasRole(id Identity, role Role) bool {
	switch role {
	case RoleAnonymous:
		return true
	case RoleUser:
		return id.IsUser()
	case RoleModerator:
		return id.IsUser() && id.Role == RoleModerator
	case RoleService:
		return id.Role == RoleService
	default:
		return false
	}
}

// Authorize checks the required role and, when owner is non-nil, that the
// identity is that owner.
func Authorize(id Identity, required Role, owner *uint) bool {
	if !HasRole(id, required) {
		return false
	}
	if owner == nil {
		return true
	}
	return id.IsUser() && id.UserID == *owner
}

// ServiceKeyMatches compares a presented service key in constant time. An
// unconfigured key never matches.
func ServiceKeyMatches(expected, presented string) bool {
	if expected == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}
