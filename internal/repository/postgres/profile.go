package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/caretrip/coordination-api/internal/model"
	"github.com/caretrip/coordination-api/internal/repository"
)

type profileRepository struct {
	BaseRepository
}

func NewProfileRepository(base BaseRepository) repository.ProfileRepository {
	return &profileRepository{base}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.UserProfile) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return r.CreateTx(ctx, tx, profile)
	})
}

func (r *profileRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, profile *model.UserProfile) error {
	query := `
		INSERT INTO user_profiles_healthcare (
			id, full_name, email, password_hash, phone_number, country,
			role, status, provider_type, specialization, facility_name,
			permissions, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt

	_, err := tx.ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Email,
		profile.PasswordHash,
		profile.PhoneNumber,
		profile.Country,
		profile.Role,
		profile.Status,
		profile.ProviderType,
		profile.Specialization,
		profile.FacilityName,
		profile.Permissions,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	query := `
		SELECT * FROM user_profiles_healthcare
		WHERE id = $1
	`

	var profile model.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	query := `
		SELECT * FROM user_profiles_healthcare
		WHERE email = $1
	`

	var profile model.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, email); err != nil {
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}

	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *model.UserProfile) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return r.UpdateTx(ctx, tx, profile)
	})
}

// UpdateTx never touches the email column: email is immutable after
// creation, enforced here rather than only in the form layer.
func (r *profileRepository) UpdateTx(ctx context.Context, tx *sqlx.Tx, profile *model.UserProfile) error {
	query := `
		UPDATE user_profiles_healthcare SET
			full_name = $1,
			phone_number = $2,
			country = $3,
			role = $4,
			status = $5,
			provider_type = $6,
			specialization = $7,
			facility_name = $8,
			permissions = $9,
			updated_at = $10
		WHERE id = $11
	`

	profile.UpdatedAt = time.Now()

	result, err := tx.ExecContext(ctx, query,
		profile.FullName,
		profile.PhoneNumber,
		profile.Country,
		profile.Role,
		profile.Status,
		profile.ProviderType,
		profile.Specialization,
		profile.FacilityName,
		profile.Permissions,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("profile not found")
	}

	return nil
}

func (r *profileRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return r.SetStatusTx(ctx, tx, id, status)
	})
}

func (r *profileRepository) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status string) error {
	query := `
		UPDATE user_profiles_healthcare
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := tx.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set profile status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("profile not found")
	}
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return r.DeleteTx(ctx, tx, id)
	})
}

func (r *profileRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	query := `
		DELETE FROM user_profiles_healthcare
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("profile not found")
	}

	return nil
}

func (r *profileRepository) List(ctx context.Context, filter *model.DirectoryFilter) ([]*model.UserProfile, error) {
	query := `
		SELECT * FROM user_profiles_healthcare
		WHERE 1=1
	`
	args := []interface{}{}

	if filter != nil {
		if filter.Role != "" {
			query += fmt.Sprintf(" AND role = $%d", len(args)+1)
			args = append(args, filter.Role)
		}

		if filter.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", len(args)+1)
			args = append(args, filter.Status)
		}

		if filter.SearchTerm != "" {
			query += fmt.Sprintf(" AND (full_name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1)
			args = append(args, "%"+filter.SearchTerm+"%")
		}
	}

	query += " ORDER BY created_at DESC"

	var profiles []*model.UserProfile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	return profiles, nil
}
