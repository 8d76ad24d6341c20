package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudblitz/enquiry-service/internal/domain"
)

func TestAdminOnlyGates(t *testing.T) {
	gates := map[string]func(*domain.User) error{
		"list":   CanListUsers,
		"create": CanCreateUser,
		"delete": CanDeleteUser,
	}
	for name, gate := range gates {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, gate(actor("a1", domain.RoleAdmin)))
			assert.Error(t, gate(actor("s1", domain.RoleStaff)))
			assert.Error(t, gate(actor("u1", domain.RoleUser)))
			assert.Error(t, gate(nil))
		})
	}
}

func TestCanReadUser_AnyAuthenticatedCaller(t *testing.T) {
	assert.NoError(t, CanReadUser(actor("u1", domain.RoleUser)))
	assert.NoError(t, CanReadUser(actor("s1", domain.RoleStaff)))
	assert.Error(t, CanReadUser(nil))
}

func TestCanUpdateUser(t *testing.T) {
	target := actor("u2", domain.RoleUser)

	assert.NoError(t, CanUpdateUser(actor("a1", domain.RoleAdmin), target))
	assert.NoError(t, CanUpdateUser(actor("u2", domain.RoleUser), target))
	assert.Error(t, CanUpdateUser(actor("u1", domain.RoleUser), target))
	assert.Error(t, CanUpdateUser(actor("s1", domain.RoleStaff), target))
	assert.Error(t, CanUpdateUser(nil, target))
}

func TestSanitizeUserChanges_NonAdminLosesRole(t *testing.T) {
	role := domain.RoleAdmin
	active := false
	seen := true
	changes := UserChanges{Role: &role, IsActive: &active, HasSeenTutorial: &seen}

	self := actor("u1", domain.RoleUser)
	got := SanitizeUserChanges(self, self, changes)
	assert.Nil(t, got.Role)
	require.NotNil(t, got.IsActive)
	assert.False(t, *got.IsActive)
	require.NotNil(t, got.HasSeenTutorial)
	assert.True(t, *got.HasSeenTutorial)
}

func TestSanitizeUserChanges_ForeignTutorialFlagDropped(t *testing.T) {
	seen := true
	changes := UserChanges{HasSeenTutorial: &seen}

	got := SanitizeUserChanges(actor("s1", domain.RoleStaff), actor("u2", domain.RoleUser), changes)
	assert.Nil(t, got.HasSeenTutorial)
}

func TestSanitizeUserChanges_AdminKeepsEverything(t *testing.T) {
	role := domain.RoleStaff
	active := false
	changes := UserChanges{Role: &role, IsActive: &active}

	got := SanitizeUserChanges(actor("a1", domain.RoleAdmin), actor("u2", domain.RoleUser), changes)
	assert.NotNil(t, got.Role)
	assert.NotNil(t, got.IsActive)
}
