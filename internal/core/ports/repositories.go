package ports

import (
	"context"
	"time"

	"airport-vms/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ApplicationRepository persists vendor applications.
// Lookups return (nil, nil) when the record does not exist.
type ApplicationRepository interface {
	// Create inserts a new application. Unique violations surface as
	// domain.ErrDuplicateEmail or domain.ErrDuplicateApplicationNumber.
	Create(ctx context.Context, app *domain.VendorApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VendorApplication, error)
	GetByEmail(ctx context.Context, email string) (*domain.VendorApplication, error)
	// List returns applications newest first, optionally filtered by status.
	List(ctx context.Context, status *domain.ApplicationStatus) ([]domain.VendorApplication, error)
	// MarkReviewed records a decision only if the application is still pending.
	// It reports false when no pending application matched.
	MarkReviewed(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.ApplicationStatus, reviewedBy string, reviewedAt time.Time) (bool, error)
}

// VendorRepository persists provisioned vendor accounts.
type VendorRepository interface {
	Create(ctx context.Context, tx pgx.Tx, vendor *domain.VendorAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VendorAccount, error)
	GetByEmail(ctx context.Context, email string) (*domain.VendorAccount, error)
	GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*domain.VendorAccount, error)
}

// AdminRepository persists admin users.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
