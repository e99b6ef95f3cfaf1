package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/caretrip/coordination-api/internal/model"
)

// ProfileRepository is the CRUD facade over the user_profiles table.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.UserProfile) error
	Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*model.UserProfile, error)
	Update(ctx context.Context, profile *model.UserProfile) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *model.DirectoryFilter) ([]*model.UserProfile, error)
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	CreateTx(ctx context.Context, tx *sqlx.Tx, profile *model.UserProfile) error
	UpdateTx(ctx context.Context, tx *sqlx.Tx, profile *model.UserProfile) error
	SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status string) error
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, error)
	Cleanup(ctx context.Context, before time.Time) (int64, error)
}

// OutboxRepository stores pending directory change events.
type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	CreateTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error
	GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
