// Package console implements the admin directory session: filter
// state, modal lifecycle and form drafts for directory screens. It
// holds no rendering concerns; a UI layer drives it through its
// methods. A controller is a per-operator session and is not safe for
// concurrent use: all transitions happen on user-driven events.
package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/caretrip/coordination-api/internal/model"
	"github.com/caretrip/coordination-api/internal/service/directory"
	"github.com/caretrip/coordination-api/internal/service/rbac"
	"github.com/caretrip/coordination-api/pkg/errors"
)

// Mode identifies what the open modal is doing.
type Mode string

const (
	ModeCreate      Mode = "create"
	ModeEdit        Mode = "edit"
	ModeView        Mode = "view"
	ModePermissions Mode = "permissions"
)

// FilterAll disables a role or status filter.
const FilterAll = "all"

// Draft is the working copy of a profile form. Email is only writable
// while creating; edit screens display it disabled.
type Draft struct {
	FullName       string
	Email          string
	PhoneNumber    string
	Country        string
	Role           model.Role
	Status         string
	ProviderType   string
	Specialization string
	FacilityName   string
	Permissions    model.PermissionSet
}

// Controller orchestrates one operator's directory session.
type Controller struct {
	directory directory.Servicer
	operator  model.Identity

	users        []*model.UserProfile
	searchTerm   string
	roleFilter   string
	statusFilter string

	modalOpen bool
	mode      Mode
	selected  *model.UserProfile
	draft     *Draft
}

// NewController builds a session for the given operator. The operator
// identity is injected rather than read from ambient state so that
// role gating is testable.
func NewController(dir directory.Servicer, operator model.Identity) *Controller {
	return &Controller{
		directory:    dir,
		operator:     operator,
		roleFilter:   FilterAll,
		statusFilter: FilterAll,
	}
}

// Load fetches the directory. On failure the previously loaded list is
// retained and the error is surfaced to the operator.
func (c *Controller) Load(ctx context.Context) error {
	users, err := c.directory.ListProfiles(ctx, nil)
	if err != nil {
		return err
	}
	c.users = users
	return nil
}

// Users returns the last successfully fetched list, unfiltered.
func (c *Controller) Users() []*model.UserProfile {
	return c.users
}

func (c *Controller) SetSearchTerm(term string) { c.searchTerm = term }
func (c *Controller) SetRoleFilter(role string) { c.roleFilter = role }
func (c *Controller) SetStatusFilter(s string)  { c.statusFilter = s }

// FilteredUsers applies search, role and status filters to the loaded
// list. Purely local and synchronous; never triggers a fetch.
func (c *Controller) FilteredUsers() []*model.UserProfile {
	return Filter(c.users, c.searchTerm, c.roleFilter, c.statusFilter)
}

// Filter returns the members of users matching all three criteria: a
// case-insensitive substring match of term against full name or email
// (empty term matches everything), and equality against the role and
// status filters ("all" disables either). The three checks are
// independent, so filter order cannot change the result.
func Filter(users []*model.UserProfile, term, roleFilter, statusFilter string) []*model.UserProfile {
	lowered := strings.ToLower(term)

	out := make([]*model.UserProfile, 0, len(users))
	for _, u := range users {
		if lowered != "" &&
			!strings.Contains(strings.ToLower(u.FullName), lowered) &&
			!strings.Contains(strings.ToLower(u.Email), lowered) {
			continue
		}
		if roleFilter != "" && roleFilter != FilterAll && string(u.Role) != roleFilter {
			continue
		}
		if statusFilter != "" && statusFilter != FilterAll && u.Status != statusFilter {
			continue
		}
		out = append(out, u)
	}
	return out
}

// OpenCreate opens the modal with an empty draft: patient role, pending
// status, and the patient default permissions.
func (c *Controller) OpenCreate() {
	c.modalOpen = true
	c.mode = ModeCreate
	c.selected = nil
	c.draft = &Draft{
		Role:        model.RolePatient,
		Status:      model.StatusPending,
		Permissions: rbac.ResolveDefaultPermissions(model.RolePatient),
	}
}

// OpenEdit opens the modal populated from the selected user.
func (c *Controller) OpenEdit(id uuid.UUID) error {
	return c.openFor(ModeEdit, id)
}

// OpenView opens a read-only modal for the selected user.
func (c *Controller) OpenView(id uuid.UUID) error {
	return c.openFor(ModeView, id)
}

// OpenPermissions opens the permissions-only modal section.
func (c *Controller) OpenPermissions(id uuid.UUID) error {
	return c.openFor(ModePermissions, id)
}

func (c *Controller) openFor(mode Mode, id uuid.UUID) error {
	user := c.findUser(id)
	if user == nil {
		return errors.NotFound("user", nil)
	}

	permissions := user.Permissions
	if permissions == nil {
		permissions = rbac.ResolveDefaultPermissions(user.Role)
	}

	c.modalOpen = true
	c.mode = mode
	c.selected = user
	c.draft = &Draft{
		FullName:       user.FullName,
		Email:          user.Email,
		PhoneNumber:    deref(user.PhoneNumber),
		Country:        deref(user.Country),
		Role:           user.Role,
		Status:         user.Status,
		ProviderType:   deref(user.ProviderType),
		Specialization: deref(user.Specialization),
		FacilityName:   deref(user.FacilityName),
		Permissions:    permissions.Clone(),
	}
	return nil
}

// CloseModal discards the draft.
func (c *Controller) CloseModal() {
	c.modalOpen = false
	c.selected = nil
	c.draft = nil
}

func (c *Controller) ModalOpen() bool { return c.modalOpen }
func (c *Controller) Mode() Mode      { return c.mode }

func (c *Controller) Selected() *model.UserProfile { return c.selected }

// Draft returns the current form draft, nil when no modal is open.
func (c *Controller) Draft() *Draft {
	return c.draft
}

// SetDraftRole changes the draft's role and recomputes its permission
// set from the role defaults, discarding any manual toggles made before
// the change. Role change means "start over on permissions".
func (c *Controller) SetDraftRole(role model.Role) {
	if c.draft == nil {
		return
	}
	c.draft.Role = role
	c.draft.Permissions = rbac.ResolveDefaultPermissions(role)
}

// TogglePermission flips one permission in the draft.
func (c *Controller) TogglePermission(key string) error {
	if c.draft == nil {
		return fmt.Errorf("no open form")
	}
	if _, ok := c.draft.Permissions[key]; !ok {
		return fmt.Errorf("unknown permission key: %s", key)
	}
	c.draft.Permissions[key] = !c.draft.Permissions[key]
	return nil
}

// Submit writes the draft through the directory. On success the list is
// reloaded and the modal closes; on failure the modal stays open with
// the draft intact and the previous list is untouched.
func (c *Controller) Submit(ctx context.Context) error {
	if c.draft == nil || !c.modalOpen {
		return fmt.Errorf("no open form")
	}

	var err error
	switch c.mode {
	case ModeCreate:
		_, err = c.directory.CreateProfile(ctx, c.operator, c.draft.toCreateRequest())
	case ModeEdit, ModePermissions:
		if c.selected == nil {
			return fmt.Errorf("no user selected")
		}
		_, err = c.directory.UpdateProfile(ctx, c.operator, c.selected.ID, c.draft.toUpdateRequest(c.mode))
	case ModeView:
		return fmt.Errorf("view mode cannot submit")
	default:
		return fmt.Errorf("unknown mode: %s", c.mode)
	}
	if err != nil {
		return err
	}

	if err := c.Load(ctx); err != nil {
		// The write landed; surface the stale list error but still
		// close the form.
		c.CloseModal()
		return err
	}
	c.CloseModal()
	return nil
}

// Delete removes a user after the confirm callback approves. Declining
// is a no-op: no directory call, no list change.
func (c *Controller) Delete(ctx context.Context, id uuid.UUID, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return nil
	}
	if err := c.directory.DeleteProfile(ctx, c.operator, id); err != nil {
		return err
	}
	return c.Load(ctx)
}

// SetStatus toggles a user's status and refreshes the list.
func (c *Controller) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if err := c.directory.SetStatus(ctx, c.operator, id, status); err != nil {
		return err
	}
	return c.Load(ctx)
}

func (c *Controller) findUser(id uuid.UUID) *model.UserProfile {
	for _, u := range c.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (d *Draft) toCreateRequest() *model.CreateProfileRequest {
	req := &model.CreateProfileRequest{
		FullName:    d.FullName,
		Email:       d.Email,
		PhoneNumber: optional(d.PhoneNumber),
		Country:     optional(d.Country),
		Role:        d.Role,
		Status:      d.Status,
		Permissions: d.Permissions.Clone(),
	}
	if d.Role == model.RoleProvider {
		req.ProviderType = optional(d.ProviderType)
		req.Specialization = optional(d.Specialization)
		req.FacilityName = optional(d.FacilityName)
	}
	return req
}

func (d *Draft) toUpdateRequest(mode Mode) *model.UpdateProfileRequest {
	if mode == ModePermissions {
		return &model.UpdateProfileRequest{
			Permissions: d.Permissions.Clone(),
		}
	}

	role := d.Role
	req := &model.UpdateProfileRequest{
		FullName:    &d.FullName,
		PhoneNumber: optional(d.PhoneNumber),
		Country:     optional(d.Country),
		Role:        &role,
		Status:      &d.Status,
		Permissions: d.Permissions.Clone(),
	}
	if d.Role == model.RoleProvider {
		req.ProviderType = optional(d.ProviderType)
		req.Specialization = optional(d.Specialization)
		req.FacilityName = optional(d.FacilityName)
	}
	return req
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
