package auth

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
	jwtauth "github.com/caretrip/coordination-api/pkg/auth"
	"github.com/caretrip/coordination-api/pkg/security"
)

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

func newAuthFixture(t *testing.T) (*Service, *mockProfileRepo, *mockAuditRepo, security.PasswordHasher) {
	t.Helper()
	repo := new(mockProfileRepo)
	auditRepo := new(mockAuditRepo)
	hasher := security.NewBcryptHasher(4)
	jwtSvc := jwtauth.NewJWTService("test-secret", time.Hour)

	svc := NewService(repo, jwtSvc, hasher, auditService.NewService(auditRepo), time.Hour)
	return svc, repo, auditRepo, hasher
}

func activeProfile(t *testing.T, hasher security.PasswordHasher, password string) *model.UserProfile {
	t.Helper()
	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	return &model.UserProfile{
		Base:         model.Base{ID: uuid.New()},
		FullName:     "Admin",
		Email:        "admin@caretrip.example.com",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, repo, auditRepo, hasher := newAuthFixture(t)

	profile := activeProfile(t, hasher, "correct-horse")
	repo.On("GetByEmail", mock.Anything, profile.Email).Return(profile, nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
		return l.Action == model.AuditActionLogin
	})).Return(nil)

	resp, err := svc.Login(context.Background(), profile.Email, "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo, _, hasher := newAuthFixture(t)

	profile := activeProfile(t, hasher, "correct-horse")
	repo.On("GetByEmail", mock.Anything, profile.Email).Return(profile, nil)

	_, err := svc.Login(context.Background(), profile.Email, "battery-staple")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, repo, _, _ := newAuthFixture(t)

	repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, assert.AnError)

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever-password")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccounts(t *testing.T) {
	svc, repo, _, hasher := newAuthFixture(t)

	for _, status := range []string{model.StatusInactive, model.StatusSuspended, model.StatusPending} {
		profile := activeProfile(t, hasher, "correct-horse")
		profile.Status = status
		repo.On("GetByEmail", mock.Anything, profile.Email).Return(profile, nil).Once()

		_, err := svc.Login(context.Background(), profile.Email, "correct-horse")
		assert.Error(t, err, "status %s", status)
	}
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc, repo, auditRepo, hasher := newAuthFixture(t)

	profile := activeProfile(t, hasher, "correct-horse")
	repo.On("GetByEmail", mock.Anything, profile.Email).Return(profile, nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Login(context.Background(), profile.Email, "correct-horse")
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), resp.AccessToken+"x")
	assert.Error(t, err)
}
