package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flights_backend/internal/models"
)

func TestHasRole(t *testing.T) {
	user := IdentityFor(&models.User{ID: 1, Name: "u"})
	mod := IdentityFor(&models.User{ID: 2, Name: "m", IsModerator: true})

	tests := []struct {
		name string
		id   Identity
		role Role
		want bool
	}{
		{"anonymous may read", Anonymous, RoleAnonymous, true},
		{"anonymous is not a user", Anonymous, RoleUser, false},
		{"user is a user", user, RoleUser, true},
		{"user is not a moderator", user, RoleModerator, false},
		{"moderator satisfies user", mod, RoleUser, true},
		{"moderator is a moderator", mod, RoleModerator, true},
		{"moderator is not the service", mod, RoleService, false},
		{"service is the service", ServiceIdentity, RoleService, true},
		{"service is not a user", ServiceIdentity, RoleUser, false},
		{"service is not a moderator", ServiceIdentity, RoleModerator, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasRole(tt.id, tt.role))
		})
	}
}

func TestAuthorize_Ownership(t *testing.T) {
	owner := uint(1)
	user := IdentityFor(&models.User{ID: 1})
	other := IdentityFor(&models.User{ID: 2})
	mod := IdentityFor(&models.User{ID: 3, IsModerator: true})

	assert.True(t, Authorize(user, RoleUser, &owner))
	assert.False(t, Authorize(other, RoleUser, &owner))
	assert.False(t, Authorize(mod, RoleUser, &owner), "moderators do not own other users' flights")
	assert.False(t, Authorize(ServiceIdentity, RoleUser, &owner))
	assert.True(t, Authorize(mod, RoleModerator, nil))
}

func TestRoleRoundTrip(t *testing.T) {
	for _, r := range []Role{RoleAnonymous, RoleUser, RoleModerator, RoleService} {
		assert.Equal(t, r, ParseRole(r.String()))
	}
	assert.Equal(t, RoleAnonymous, ParseRole("admin"))
}

func TestServiceKeyMatches(t *testing.T) {
	assert.True(t, ServiceKeyMatches("k3y", "k3y"))
	assert.False(t, ServiceKeyMatches("k3y", "key"))
	assert.False(t, ServiceKeyMatches("", ""))
	assert.False(t, ServiceKeyMatches("k3y", ""))
}
