package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Role identifies the coarse-grained identity category of a profile.
// The set is fixed and not user-extensible.
type Role string

const (
	RolePatient     Role = "patient"
	RoleProvider    Role = "provider"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

// Roles lists all valid roles in catalog order.
var Roles = []Role{RolePatient, RoleProvider, RoleCoordinator, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleProvider, RoleCoordinator, RoleAdmin:
		return true
	}
	return false
}

// Permission keys. Every permission set carries all of them.
const (
	PermDashboardAccess   = "dashboard_access"
	PermPatientManagement = "patient_management"
	PermUserManagement    = "user_management"
	PermAnalyticsAccess   = "analytics_access"
	PermSystemSettings    = "system_settings"
	PermDataExport        = "data_export"
	PermFinancialAccess   = "financial_access"
	PermAdminPanel        = "admin_panel"
)

// PermissionKeys lists all permission keys in catalog order.
var PermissionKeys = []string{
	PermDashboardAccess,
	PermPatientManagement,
	PermUserManagement,
	PermAnalyticsAccess,
	PermSystemSettings,
	PermDataExport,
	PermFinancialAccess,
	PermAdminPanel,
}

// PermissionSet maps permission keys to their enablement. A valid set
// always contains every key from PermissionKeys and nothing else.
type PermissionSet map[string]bool

// NewPermissionSet returns a set with every key present and disabled.
func NewPermissionSet() PermissionSet {
	ps := make(PermissionSet, len(PermissionKeys))
	for _, key := range PermissionKeys {
		ps[key] = false
	}
	return ps
}

// Validate rejects sets with unknown or missing keys.
func (ps PermissionSet) Validate() error {
	for key := range ps {
		if !isPermissionKey(key) {
			return fmt.Errorf("unknown permission key: %s", key)
		}
	}
	for _, key := range PermissionKeys {
		if _, ok := ps[key]; !ok {
			return fmt.Errorf("missing permission key: %s", key)
		}
	}
	return nil
}

// Normalize fills in any absent keys as disabled and drops unknown ones.
func (ps PermissionSet) Normalize() PermissionSet {
	out := NewPermissionSet()
	for _, key := range PermissionKeys {
		if v, ok := ps[key]; ok {
			out[key] = v
		}
	}
	return out
}

// Clone returns an independent copy of the set.
func (ps PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(ps))
	for k, v := range ps {
		out[k] = v
	}
	return out
}

// Value implements driver.Valuer so the set persists as JSONB.
func (ps PermissionSet) Value() (driver.Value, error) {
	if ps == nil {
		return nil, nil
	}
	return json.Marshal(ps)
}

// Scan implements sql.Scanner.
func (ps *PermissionSet) Scan(src interface{}) error {
	if src == nil {
		*ps = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported permission set source type %T", src)
	}

	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode permission set: %w", err)
	}
	*ps = PermissionSet(raw).Normalize()
	return nil
}

func isPermissionKey(key string) bool {
	for _, k := range PermissionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// RoleInfo describes a catalog role.
type RoleInfo struct {
	ID          Role   `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// PermissionInfo describes a catalog permission.
type PermissionInfo struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
}
