package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretrip/coordination-api/internal/model"
)

func TestListRolesMatchesRoleSet(t *testing.T) {
	roles := ListRoles()
	require.Len(t, roles, len(model.Roles))

	for i, info := range roles {
		assert.Equal(t, model.Roles[i], info.ID)
		assert.NotEmpty(t, info.Label)
		assert.NotEmpty(t, info.Description)
	}
}

func TestListPermissionsMatchesKeySet(t *testing.T) {
	perms := ListPermissions()
	require.Len(t, perms, len(model.PermissionKeys))

	for i, info := range perms {
		assert.Equal(t, model.PermissionKeys[i], info.Key)
		assert.NotEmpty(t, info.Label)
	}
}

func TestCatalogsReturnCopies(t *testing.T) {
	roles := ListRoles()
	roles[0].Label = "mutated"
	assert.NotEqual(t, "mutated", ListRoles()[0].Label)

	perms := ListPermissions()
	perms[0].Label = "mutated"
	assert.NotEqual(t, "mutated", ListPermissions()[0].Label)
}
