package rbac

import (
	"github.com/caretrip/coordination-api/internal/model"
)

// ResolveDefaultPermissions returns the default permission set for a
// role. Pure and deterministic; an unknown role falls back to the
// patient default. Every returned set carries all permission keys.
func ResolveDefaultPermissions(role model.Role) model.PermissionSet {
	ps := model.NewPermissionSet()
	ps[model.PermDashboardAccess] = true

	switch role {
	case model.RoleProvider:
		ps[model.PermPatientManagement] = true
		ps[model.PermAnalyticsAccess] = true
	case model.RoleCoordinator:
		ps[model.PermPatientManagement] = true
		ps[model.PermAnalyticsAccess] = true
		ps[model.PermDataExport] = true
	case model.RoleAdmin:
		for _, key := range model.PermissionKeys {
			ps[key] = true
		}
	}

	return ps
}
