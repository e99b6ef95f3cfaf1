package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/caretrip/coordination-api/internal/model"
	"github.com/caretrip/coordination-api/internal/repository"
	"github.com/caretrip/coordination-api/internal/service/audit"
	"github.com/caretrip/coordination-api/pkg/auth"
	"github.com/caretrip/coordination-api/pkg/security"
)

type Service struct {
	repo    repository.ProfileRepository
	jwtSvc  auth.JWTService
	hasher  security.PasswordHasher
	auditor *audit.Service
	expiry  time.Duration
}

func NewService(repo repository.ProfileRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher, auditor *audit.Service, expiry time.Duration) *Service {
	return &Service{
		repo:    repo,
		jwtSvc:  jwtSvc,
		hasher:  hasher,
		auditor: auditor,
		expiry:  expiry,
	}
}

// Login verifies credentials and issues a session token. Inactive and
// suspended accounts cannot sign in.
func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	profile, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if profile.Status != model.StatusActive {
		return nil, fmt.Errorf("account is not active")
	}

	if err := s.hasher.Compare(profile.PasswordHash, password); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	token, err := s.jwtSvc.GenerateAccessToken(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.auditor.Log(ctx, profile.ID, model.AuditActionLogin, model.AuditEntityProfile, profile.ID, nil)

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.expiry.Seconds()),
	}, nil
}

// ValidateToken parses and verifies a session token.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	return s.jwtSvc.ValidateToken(token)
}
