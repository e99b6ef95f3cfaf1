package directory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/caretrip/coordination-api/internal/email"
	"github.com/caretrip/coordination-api/internal/model"
	"github.com/caretrip/coordination-api/internal/repository"
	"github.com/caretrip/coordination-api/internal/service/audit"
	"github.com/caretrip/coordination-api/internal/service/rbac"
	"github.com/caretrip/coordination-api/pkg/errors"
	"github.com/caretrip/coordination-api/pkg/logger"
	"github.com/caretrip/coordination-api/pkg/metrics"
)

// Servicer is the user directory: the sole mutator of profile records.
// Every operation maps to one store round trip; nothing retries
// automatically, callers keep their last good state on failure.
type Servicer interface {
	ListProfiles(ctx context.Context, filter *model.DirectoryFilter) ([]*model.UserProfile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
	CreateProfile(ctx context.Context, actor model.Identity, req *model.CreateProfileRequest) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, actor model.Identity, id uuid.UUID, req *model.UpdateProfileRequest) (*model.UserProfile, error)
	SetStatus(ctx context.Context, actor model.Identity, id uuid.UUID, status string) error
	DeleteProfile(ctx context.Context, actor model.Identity, id uuid.UUID) error
	UpdateSelf(ctx context.Context, actor model.Identity, req *model.UpdateSelfRequest) (*model.UserProfile, error)
}

type Service struct {
	repo     repository.ProfileRepository
	outbox   repository.OutboxRepository
	auditor  *audit.Service
	emailSvc email.Service
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.ProfileRepository,
	outbox repository.OutboxRepository,
	auditor *audit.Service,
	emailSvc email.Service,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		outbox:   outbox,
		auditor:  auditor,
		emailSvc: emailSvc,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *Service) ListProfiles(ctx context.Context, filter *model.DirectoryFilter) ([]*model.UserProfile, error) {
	profiles, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.Transport(fmt.Errorf("failed to list profiles: %w", err))
	}

	// Older rows may predate the permissions column.
	for _, p := range profiles {
		if p.Permissions == nil {
			p.Permissions = rbac.ResolveDefaultPermissions(p.Role)
		}
	}
	return profiles, nil
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	profile, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("profile", err)
	}
	if profile.Permissions == nil {
		profile.Permissions = rbac.ResolveDefaultPermissions(profile.Role)
	}
	return profile, nil
}

func (s *Service) CreateProfile(ctx context.Context, actor model.Identity, req *model.CreateProfileRequest) (*model.UserProfile, error) {
	if !actor.IsAdmin() {
		return nil, errors.Forbidden("directory operations require the admin role")
	}
	if err := validateCreate(req); err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}

	permissions := req.Permissions
	if permissions == nil {
		permissions = rbac.ResolveDefaultPermissions(req.Role)
	} else {
		if err := permissions.Validate(); err != nil {
			return nil, errors.BadRequest(err.Error(), err)
		}
		permissions = permissions.Clone()
	}

	status := req.Status
	if status == "" {
		status = model.StatusPending
	}

	profile := &model.UserProfile{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Country:     req.Country,
		Role:        req.Role,
		Status:      status,
		Permissions: permissions,
	}
	applyProviderFields(profile, req.ProviderType, req.Specialization, req.FacilityName)

	err := s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.CreateTx(ctx, tx, profile); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, model.EventProfileCreated, profile)
	})
	if err != nil {
		s.metrics.DirectoryMutations.WithLabelValues(model.AuditActionCreate, "error").Inc()
		return nil, errors.Transport(fmt.Errorf("failed to create profile: %w", err))
	}
	s.metrics.DirectoryMutations.WithLabelValues(model.AuditActionCreate, "success").Inc()

	if err := s.emailSvc.SendInvitation(ctx, profile.Email, profile.FullName); err != nil {
		s.logger.Error(err, "invitation email failed", "profile_id", profile.ID.String())
		s.audit(ctx, actor, "invitation_email_failed", profile.ID, &audit.LogOptions{
			Metadata: map[string]interface{}{"error": err.Error()},
		})
	}

	s.audit(ctx, actor, model.AuditActionCreate, profile.ID, &audit.LogOptions{Changes: profile})
	return profile, nil
}

// UpdateProfile applies a partial update. Email is immutable after
// creation; the request type has no email field and the repository
// never writes the column.
func (s *Service) UpdateProfile(ctx context.Context, actor model.Identity, id uuid.UUID, req *model.UpdateProfileRequest) (*model.UserProfile, error) {
	if !actor.IsAdmin() {
		return nil, errors.Forbidden("directory operations require the admin role")
	}

	profile, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("profile", err)
	}

	roleChanged := applyUpdate(profile, req)

	if req.Permissions != nil {
		if err := req.Permissions.Validate(); err != nil {
			return nil, errors.BadRequest(err.Error(), err)
		}
		profile.Permissions = req.Permissions.Clone()
	} else if roleChanged || profile.Permissions == nil {
		// Role change recomputes the set wholesale.
		profile.Permissions = rbac.ResolveDefaultPermissions(profile.Role)
	}

	err = s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.UpdateTx(ctx, tx, profile); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, model.EventProfileUpdated, profile)
	})
	if err != nil {
		s.metrics.DirectoryMutations.WithLabelValues(model.AuditActionUpdate, "error").Inc()
		return nil, errors.Transport(fmt.Errorf("failed to update profile: %w", err))
	}
	s.metrics.DirectoryMutations.WithLabelValues(model.AuditActionUpdate, "success").Inc()

	s.audit(ctx, actor, model.AuditActionUpdate, profile.ID, &audit.LogOptions{Changes: req})
	return profile, nil
}

func (s *Service) SetStatus(ctx context.Context, actor model.Identity, id uuid.UUID, status string) error {
	if !actor.IsAdmin() {
		return errors.Forbidden("directory operations require the admin role")
	}
	if !model.ValidStatus(status) {
		return errors.BadRequest(fmt.Sprintf("invalid status: %s", status), nil)
	}

	profile, err := s.repo.Get(ctx, id)
	if err != nil {
		return errors.NotFound("profile", err)
	}

	err = s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.SetStatusTx(ctx, tx, id, status); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, model.EventProfileStatusChanged, map[string]interface{}{
			"id":     id,
			"status": status,
		})
	})
	if err != nil {
		s.metrics.DirectoryMutations.WithLabelValues(model.AuditActionSetStatus, "error").Inc()
		return errors.Transport(fmt.Errorf("failed to set status: %w", err))
	}
	s.metrics.DirectoryMutations.WithLabelValues(model.AuditActionSetStatus, "success").Inc()

	if err := s.emailSvc.SendStatusNotice(ctx, profile.Email, profile.FullName, status); err != nil {
		s.logger.Error(err, "status notice email failed", "profile_id", id.String())
	}

	s.audit(ctx, actor, model.AuditActionSetStatus, id, &audit.LogOptions{
		Changes: map[string]interface{}{"status": status},
	})
	return nil
}

// DeleteProfile is irreversible. The caller is responsible for the
// explicit confirmation step before invoking it.
func (s *Service) DeleteProfile(ctx context.Context, actor model.Identity, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return errors.Forbidden("directory operations require the admin role")
	}

	if _, err := s.repo.Get(ctx, id); err != nil {
		return errors.NotFound("profile", err)
	}

	err := s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.DeleteTx(ctx, tx, id); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, model.EventProfileDeleted, map[string]interface{}{"id": id})
	})
	if err != nil {
		s.metrics.DirectoryMutations.WithLabelValues(model.AuditActionDelete, "error").Inc()
		return errors.Transport(fmt.Errorf("failed to delete profile: %w", err))
	}
	s.metrics.DirectoryMutations.WithLabelValues(model.AuditActionDelete, "success").Inc()

	s.audit(ctx, actor, model.AuditActionDelete, id, nil)
	return nil
}

// UpdateSelf lets any authenticated user edit the restricted field set
// of their own profile.
func (s *Service) UpdateSelf(ctx context.Context, actor model.Identity, req *model.UpdateSelfRequest) (*model.UserProfile, error) {
	profile, err := s.repo.Get(ctx, actor.UserID)
	if err != nil {
		return nil, errors.NotFound("profile", err)
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.Country != nil {
		profile.Country = req.Country
	}

	err = s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.UpdateTx(ctx, tx, profile); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, model.EventProfileUpdated, profile)
	})
	if err != nil {
		return nil, errors.Transport(fmt.Errorf("failed to update profile: %w", err))
	}

	s.audit(ctx, actor, model.AuditActionUpdate, profile.ID, &audit.LogOptions{Changes: req})
	return profile, nil
}

func (s *Service) enqueueEvent(ctx context.Context, tx *sqlx.Tx, eventType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return s.outbox.CreateTx(ctx, tx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   raw,
	})
}

func (s *Service) audit(ctx context.Context, actor model.Identity, action string, entityID uuid.UUID, opts *audit.LogOptions) {
	if err := s.auditor.Log(ctx, actor.UserID, action, model.AuditEntityProfile, entityID, opts); err != nil {
		s.logger.Error(err, "failed to write audit log", "action", action)
	}
}

func validateCreate(req *model.CreateProfileRequest) error {
	if req.FullName == "" {
		return fmt.Errorf("full name is required")
	}
	if req.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !req.Role.Valid() {
		return fmt.Errorf("invalid role: %s", req.Role)
	}
	if req.Status != "" && !model.ValidStatus(req.Status) {
		return fmt.Errorf("invalid status: %s", req.Status)
	}
	return nil
}

// applyUpdate copies set fields onto the profile and reports whether
// the role changed. Provider fields are cleared for non-provider roles.
func applyUpdate(profile *model.UserProfile, req *model.UpdateProfileRequest) bool {
	roleChanged := false

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.Country != nil {
		profile.Country = req.Country
	}
	if req.Role != nil && *req.Role != profile.Role {
		profile.Role = *req.Role
		roleChanged = true
	}
	if req.Status != nil {
		profile.Status = *req.Status
	}

	applyProviderFields(profile, req.ProviderType, req.Specialization, req.FacilityName)
	return roleChanged
}

func applyProviderFields(profile *model.UserProfile, providerType, specialization, facilityName *string) {
	if !profile.IsProvider() {
		profile.ProviderType = nil
		profile.Specialization = nil
		profile.FacilityName = nil
		return
	}
	if providerType != nil {
		profile.ProviderType = providerType
	}
	if specialization != nil {
		profile.Specialization = specialization
	}
	if facilityName != nil {
		profile.FacilityName = facilityName
	}
}
