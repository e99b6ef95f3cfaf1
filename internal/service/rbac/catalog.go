package rbac

import (
	"github.com/caretrip/coordination-api/internal/model"
)

var roleCatalog = []model.RoleInfo{
	{
		ID:          model.RolePatient,
		Label:       "Patient",
		Description: "Traveling patient with access to their own care dashboard",
	},
	{
		ID:          model.RoleProvider,
		Label:       "Provider",
		Description: "Clinical provider managing assigned patients",
	},
	{
		ID:          model.RoleCoordinator,
		Label:       "Coordinator",
		Description: "Care coordinator arranging patient journeys",
	},
	{
		ID:          model.RoleAdmin,
		Label:       "Administrator",
		Description: "Platform administrator with full access",
	},
}

var permissionCatalog = []model.PermissionInfo{
	{Key: model.PermDashboardAccess, Label: "Dashboard Access", Description: "View the role dashboard"},
	{Key: model.PermPatientManagement, Label: "Patient Management", Description: "View and manage patient records"},
	{Key: model.PermUserManagement, Label: "User Management", Description: "Create, edit and delete platform users"},
	{Key: model.PermAnalyticsAccess, Label: "Analytics", Description: "View analytics and reports"},
	{Key: model.PermSystemSettings, Label: "System Settings", Description: "Change platform configuration"},
	{Key: model.PermDataExport, Label: "Data Export", Description: "Export directory and care data"},
	{Key: model.PermFinancialAccess, Label: "Financial Access", Description: "View billing and payment data"},
	{Key: model.PermAdminPanel, Label: "Admin Panel", Description: "Access the administration panel"},
}

// ListRoles returns the role catalog in its fixed order. The catalog is
// static: no side effects, no errors.
func ListRoles() []model.RoleInfo {
	out := make([]model.RoleInfo, len(roleCatalog))
	copy(out, roleCatalog)
	return out
}

// ListPermissions returns the permission catalog in its fixed order.
func ListPermissions() []model.PermissionInfo {
	out := make([]model.PermissionInfo, len(permissionCatalog))
	copy(out, permissionCatalog)
	return out
}
