package directory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/caretrip/coordination-api/internal/model"
	auditService "github.com/caretrip/coordination-api/internal/service/audit"
	"github.com/caretrip/coordination-api/internal/service/rbac"
	"github.com/caretrip/coordination-api/pkg/errors"
	"github.com/caretrip/coordination-api/pkg/logger"
	"github.com/caretrip/coordination-api/pkg/metrics"
)

// Registered once; promauto panics on duplicate registration.
var testMetrics = metrics.NewMetrics("directory_test")

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *model.UserProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *mockProfileRepo) Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *mockProfileRepo) GetByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *mockProfileRepo) Update(ctx context.Context, profile *model.UserProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *mockProfileRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProfileRepo) List(ctx context.Context, filter *model.DirectoryFilter) ([]*model.UserProfile, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserProfile), args.Error(1)
}

func (m *mockProfileRepo) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	args := m.Called(ctx)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(nil)
}

func (m *mockProfileRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, profile *model.UserProfile) error {
	return m.Called(ctx, tx, profile).Error(0)
}

func (m *mockProfileRepo) UpdateTx(ctx context.Context, tx *sqlx.Tx, profile *model.UserProfile) error {
	return m.Called(ctx, tx, profile).Error(0)
}

func (m *mockProfileRepo) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status string) error {
	return m.Called(ctx, tx, id, status).Error(0)
}

func (m *mockProfileRepo) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	return m.Called(ctx, tx, id).Error(0)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockOutboxRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	return m.Called(ctx, tx, event).Error(0)
}

func (m *mockOutboxRepo) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.OutboxEvent), args.Error(1)
}

func (m *mockOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error {
	return m.Called(ctx, id, status, errorMessage, retryAt).Error(0)
}

func (m *mockOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) Create(ctx context.Context, log *model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *mockAuditRepo) List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AuditLog), args.Error(1)
}

func (m *mockAuditRepo) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockEmail struct {
	mock.Mock
}

func (m *mockEmail) SendInvitation(ctx context.Context, to, name string) error {
	return m.Called(ctx, to, name).Error(0)
}

func (m *mockEmail) SendStatusNotice(ctx context.Context, to, name, status string) error {
	return m.Called(ctx, to, name, status).Error(0)
}

type serviceFixture struct {
	svc     *Service
	repo    *mockProfileRepo
	outbox  *mockOutboxRepo
	auditor *mockAuditRepo
	email   *mockEmail
}

func newFixture() *serviceFixture {
	repo := new(mockProfileRepo)
	outbox := new(mockOutboxRepo)
	auditRepo := new(mockAuditRepo)
	emailSvc := new(mockEmail)

	svc := NewService(
		repo,
		outbox,
		auditService.NewService(auditRepo),
		emailSvc,
		logger.NewLogger(nil),
		testMetrics,
	)

	return &serviceFixture{
		svc:     svc,
		repo:    repo,
		outbox:  outbox,
		auditor: auditRepo,
		email:   emailSvc,
	}
}

var admin = model.Identity{UserID: uuid.New(), Email: "admin@caretrip.example.com", Role: model.RoleAdmin}

func storedProfile(role model.Role) *model.UserProfile {
	return &model.UserProfile{
		Base:        model.Base{ID: uuid.New()},
		FullName:    "Ahmed Al-Rashid",
		Email:       "ahmed@example.com",
		Role:        role,
		Status:      model.StatusActive,
		Permissions: rbac.ResolveDefaultPermissions(role),
	}
}

func TestCreateProfileRejectsNonAdmin(t *testing.T) {
	f := newFixture()

	for _, role := range []model.Role{model.RolePatient, model.RoleProvider, model.RoleCoordinator} {
		actor := model.Identity{UserID: uuid.New(), Role: role}
		_, err := f.svc.CreateProfile(context.Background(), actor, &model.CreateProfileRequest{
			FullName: "X", Email: "x@example.com", Role: model.RolePatient,
		})

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr, "role %s", role)
		assert.Equal(t, errors.ErrForbidden, appErr.Code)
	}
	f.repo.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProfileDefaultsPermissionsAndStatus(t *testing.T) {
	f := newFixture()

	f.repo.On("WithTx", mock.Anything).Return(nil)
	f.repo.On("CreateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(p *model.UserProfile) bool {
		return p.Status == model.StatusPending &&
			assert.ObjectsAreEqual(rbac.ResolveDefaultPermissions(model.RoleProvider), p.Permissions)
	})).Return(nil)
	f.outbox.On("CreateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(e *model.OutboxEvent) bool {
		return e.EventType == model.EventProfileCreated
	})).Return(nil)
	f.email.On("SendInvitation", mock.Anything, "fatima@clinic.example.com", "Dr. Fatima Hassan").Return(nil)
	f.auditor.On("Create", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
		return l.Action == model.AuditActionCreate && l.EntityType == model.AuditEntityProfile
	})).Return(nil)

	profile, err := f.svc.CreateProfile(context.Background(), admin, &model.CreateProfileRequest{
		FullName: "Dr. Fatima Hassan",
		Email:    "fatima@clinic.example.com",
		Role:     model.RoleProvider,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, profile.Status)
	assert.True(t, profile.Permissions[model.PermPatientManagement])

	f.repo.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
	f.email.AssertExpectations(t)
	f.auditor.AssertExpectations(t)
}

func TestCreateProfileRejectsMalformedPermissions(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateProfile(context.Background(), admin, &model.CreateProfileRequest{
		FullName:    "X",
		Email:       "x@example.com",
		Role:        model.RolePatient,
		Permissions: model.PermissionSet{"root_access": true},
	})

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrBadRequest, appErr.Code)
	f.repo.AssertNotCalled(t, "WithTx", mock.Anything)
}

func TestCreateProfileStoreFailureIsTransport(t *testing.T) {
	f := newFixture()

	f.repo.On("WithTx", mock.Anything).Return(assert.AnError)

	_, err := f.svc.CreateProfile(context.Background(), admin, &model.CreateProfileRequest{
		FullName: "X", Email: "x@example.com", Role: model.RolePatient,
	})

	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))
	// No invitation and no audit entry for a write that never landed.
	f.email.AssertNotCalled(t, "SendInvitation", mock.Anything, mock.Anything, mock.Anything)
	f.auditor.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProfileSurvivesEmailFailure(t *testing.T) {
	f := newFixture()

	f.repo.On("WithTx", mock.Anything).Return(nil)
	f.repo.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.outbox.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.email.On("SendInvitation", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	f.auditor.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.CreateProfile(context.Background(), admin, &model.CreateProfileRequest{
		FullName: "X", Email: "x@example.com", Role: model.RolePatient,
	})
	require.NoError(t, err)
}

func TestUpdateProfileRoleChangeRecomputesPermissions(t *testing.T) {
	f := newFixture()

	existing := storedProfile(model.RolePatient)
	// A manual toggle that must be discarded by the role change.
	existing.Permissions[model.PermFinancialAccess] = true

	f.repo.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	f.repo.On("WithTx", mock.Anything).Return(nil)
	f.repo.On("UpdateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(p *model.UserProfile) bool {
		return p.Role == model.RoleCoordinator &&
			assert.ObjectsAreEqual(rbac.ResolveDefaultPermissions(model.RoleCoordinator), p.Permissions)
	})).Return(nil)
	f.outbox.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.auditor.On("Create", mock.Anything, mock.Anything).Return(nil)

	role := model.RoleCoordinator
	updated, err := f.svc.UpdateProfile(context.Background(), admin, existing.ID, &model.UpdateProfileRequest{
		Role: &role,
	})
	require.NoError(t, err)
	assert.False(t, updated.Permissions[model.PermFinancialAccess])
	f.repo.AssertExpectations(t)
}

func TestUpdateProfileExplicitPermissionsWin(t *testing.T) {
	f := newFixture()

	existing := storedProfile(model.RolePatient)
	custom := rbac.ResolveDefaultPermissions(model.RolePatient)
	custom[model.PermDataExport] = true

	f.repo.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	f.repo.On("WithTx", mock.Anything).Return(nil)
	f.repo.On("UpdateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(p *model.UserProfile) bool {
		return p.Role == model.RoleProvider && p.Permissions[model.PermDataExport]
	})).Return(nil)
	f.outbox.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.auditor.On("Create", mock.Anything, mock.Anything).Return(nil)

	role := model.RoleProvider
	_, err := f.svc.UpdateProfile(context.Background(), admin, existing.ID, &model.UpdateProfileRequest{
		Role:        &role,
		Permissions: custom,
	})
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestUpdateProfileClearsProviderFieldsOnRoleChange(t *testing.T) {
	f := newFixture()

	existing := storedProfile(model.RoleProvider)
	providerType := "clinic"
	existing.ProviderType = &providerType

	f.repo.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	f.repo.On("WithTx", mock.Anything).Return(nil)
	f.repo.On("UpdateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(p *model.UserProfile) bool {
		return p.Role == model.RolePatient && p.ProviderType == nil
	})).Return(nil)
	f.outbox.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.auditor.On("Create", mock.Anything, mock.Anything).Return(nil)

	role := model.RolePatient
	_, err := f.svc.UpdateProfile(context.Background(), admin, existing.ID, &model.UpdateProfileRequest{Role: &role})
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestUpdateProfileUnknownID(t *testing.T) {
	f := newFixture()

	id := uuid.New()
	f.repo.On("Get", mock.Anything, id).Return(nil, assert.AnError)

	_, err := f.svc.UpdateProfile(context.Background(), admin, id, &model.UpdateProfileRequest{})

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestSetStatusValidatesStatus(t *testing.T) {
	f := newFixture()

	err := f.svc.SetStatus(context.Background(), admin, uuid.New(), "frozen")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrBadRequest, appErr.Code)
	f.repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSetStatusNotifiesUser(t *testing.T) {
	f := newFixture()

	existing := storedProfile(model.RolePatient)
	f.repo.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	f.repo.On("WithTx", mock.Anything).Return(nil)
	f.repo.On("SetStatusTx", mock.Anything, mock.Anything, existing.ID, model.StatusSuspended).Return(nil)
	f.outbox.On("CreateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(e *model.OutboxEvent) bool {
		return e.EventType == model.EventProfileStatusChanged
	})).Return(nil)
	f.email.On("SendStatusNotice", mock.Anything, existing.Email, existing.FullName, model.StatusSuspended).Return(nil)
	f.auditor.On("Create", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.SetStatus(context.Background(), admin, existing.ID, model.StatusSuspended))
	f.repo.AssertExpectations(t)
	f.email.AssertExpectations(t)
}

func TestDeleteProfileRejectsNonAdmin(t *testing.T) {
	f := newFixture()

	actor := model.Identity{UserID: uuid.New(), Role: model.RoleCoordinator}
	err := f.svc.DeleteProfile(context.Background(), actor, uuid.New())

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)
	f.repo.AssertNotCalled(t, "DeleteTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteProfileEnqueuesEvent(t *testing.T) {
	f := newFixture()

	existing := storedProfile(model.RolePatient)
	f.repo.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	f.repo.On("WithTx", mock.Anything).Return(nil)
	f.repo.On("DeleteTx", mock.Anything, mock.Anything, existing.ID).Return(nil)
	f.outbox.On("CreateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(e *model.OutboxEvent) bool {
		return e.EventType == model.EventProfileDeleted
	})).Return(nil)
	f.auditor.On("Create", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
		return l.Action == model.AuditActionDelete
	})).Return(nil)

	require.NoError(t, f.svc.DeleteProfile(context.Background(), admin, existing.ID))
	f.repo.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
}

func TestListProfilesFillsMissingPermissions(t *testing.T) {
	f := newFixture()

	legacy := storedProfile(model.RoleCoordinator)
	legacy.Permissions = nil
	f.repo.On("List", mock.Anything, (*model.DirectoryFilter)(nil)).
		Return([]*model.UserProfile{legacy}, nil)

	profiles, err := f.svc.ListProfiles(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, rbac.ResolveDefaultPermissions(model.RoleCoordinator), profiles[0].Permissions)
}

func TestUpdateSelfIgnoresPrivilegedFields(t *testing.T) {
	f := newFixture()

	existing := storedProfile(model.RolePatient)
	actor := model.Identity{UserID: existing.ID, Email: existing.Email, Role: model.RolePatient}

	f.repo.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	f.repo.On("WithTx", mock.Anything).Return(nil)
	f.repo.On("UpdateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(p *model.UserProfile) bool {
		return p.FullName == "Ahmed A. Al-Rashid" && p.Role == model.RolePatient
	})).Return(nil)
	f.outbox.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.auditor.On("Create", mock.Anything, mock.Anything).Return(nil)

	name := "Ahmed A. Al-Rashid"
	updated, err := f.svc.UpdateSelf(context.Background(), actor, &model.UpdateSelfRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
	f.repo.AssertExpectations(t)
}
