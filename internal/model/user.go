package model

// Profile status constants
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
	StatusPending   = "pending"
)

// Statuses lists all valid profile statuses.
var Statuses = []string{StatusActive, StatusInactive, StatusSuspended, StatusPending}

func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// UserProfile represents a directory identity record. Email is immutable
// after creation. Provider fields are populated only when Role is provider.
type UserProfile struct {
	Base
	FullName       string        `json:"full_name" db:"full_name"`
	Email          string        `json:"email" db:"email"`
	PasswordHash   string        `json:"-" db:"password_hash"`
	PhoneNumber    *string       `json:"phone_number" db:"phone_number"`
	Country        *string       `json:"country" db:"country"`
	Role           Role          `json:"role" db:"role"`
	Status         string        `json:"status" db:"status"`
	ProviderType   *string       `json:"provider_type,omitempty" db:"provider_type"`
	Specialization *string       `json:"specialization,omitempty" db:"specialization"`
	FacilityName   *string       `json:"facility_name,omitempty" db:"facility_name"`
	Permissions    PermissionSet `json:"permissions" db:"permissions"`
}

// IsProvider reports whether provider-only fields are meaningful for
// this profile.
func (u *UserProfile) IsProvider() bool {
	return u.Role == RoleProvider
}

// DirectoryFilter represents directory search parameters. Zero values
// mean "all".
type DirectoryFilter struct {
	SearchTerm string `json:"search_term" form:"search_term"`
	Role       Role   `json:"role" form:"role"`
	Status     string `json:"status" form:"status"`
}

// CreateProfileRequest represents profile creation parameters.
type CreateProfileRequest struct {
	FullName       string        `json:"full_name" binding:"required"`
	Email          string        `json:"email" binding:"required,email"`
	PhoneNumber    *string       `json:"phone_number"`
	Country        *string       `json:"country"`
	Role           Role          `json:"role" binding:"required,profilerole"`
	Status         string        `json:"status" binding:"omitempty,profilestatus"`
	ProviderType   *string       `json:"provider_type"`
	Specialization *string       `json:"specialization"`
	FacilityName   *string       `json:"facility_name"`
	Permissions    PermissionSet `json:"permissions"`
}

// UpdateProfileRequest represents profile update parameters. Email is
// absent on purpose: it cannot change after creation.
type UpdateProfileRequest struct {
	FullName       *string       `json:"full_name"`
	PhoneNumber    *string       `json:"phone_number"`
	Country        *string       `json:"country"`
	Role           *Role         `json:"role" binding:"omitempty,profilerole"`
	Status         *string       `json:"status" binding:"omitempty,profilestatus"`
	ProviderType   *string       `json:"provider_type"`
	Specialization *string       `json:"specialization"`
	FacilityName   *string       `json:"facility_name"`
	Permissions    PermissionSet `json:"permissions"`
}

// UpdateSelfRequest is the restricted field set a user may change on
// their own profile. Role, status and permissions are admin-only.
type UpdateSelfRequest struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	Country     *string `json:"country"`
}

// SetStatusRequest toggles a profile's status.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,profilestatus"`
}
