package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"airport-vms/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const applicationColumns = `id, application_number, business_name, business_type, tax_id, business_license,
	years_in_business, owner_name, email, phone, address, city, state, zip_code,
	preferred_terminals, shop_type, expected_revenue, description, website, social_media,
	status, reviewed_by, reviewed_at, created_at, updated_at`

// ApplicationRepo implements ports.ApplicationRepository.
type ApplicationRepo struct {
	pool Pool
}

// NewApplicationRepo creates a new ApplicationRepo.
func NewApplicationRepo(pool Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

// Create inserts a new application. Email and application number are unique.
func (r *ApplicationRepo) Create(ctx context.Context, a *domain.VendorApplication) error {
	query := `INSERT INTO vendor_applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.ApplicationNumber, a.BusinessName, a.BusinessType, a.TaxID, a.BusinessLicense,
		a.YearsInBusiness, a.OwnerName, a.Email, a.Phone, a.Address, a.City, a.State, a.ZipCode,
		a.PreferredTerminals, a.ShopType, a.ExpectedRevenue, a.Description, a.Website, a.SocialMedia,
		a.Status, a.ReviewedBy, a.ReviewedAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := violatedConstraint(err); ok {
			switch constraint {
			case constraintApplicationEmail:
				return domain.ErrDuplicateEmail
			case constraintApplicationNumber:
				return domain.ErrDuplicateApplicationNumber
			}
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// GetByID fetches an application by its UUID.
func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.VendorApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM vendor_applications WHERE id = $1`

	a, err := scanApplication(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get application by id: %w", err)
	}
	return a, nil
}

// GetByEmail fetches an application by its normalized e-mail.
func (r *ApplicationRepo) GetByEmail(ctx context.Context, email string) (*domain.VendorApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM vendor_applications WHERE email = $1`

	a, err := scanApplication(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get application by email: %w", err)
	}
	return a, nil
}

// List returns applications newest first, filtered by status when given.
func (r *ApplicationRepo) List(ctx context.Context, status *domain.ApplicationStatus) ([]domain.VendorApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM vendor_applications`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]domain.VendorApplication, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

// MarkReviewed sets the decision only while the row is still pending.
func (r *ApplicationRepo) MarkReviewed(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.ApplicationStatus, reviewedBy string, reviewedAt time.Time) (bool, error) {
	query := `UPDATE vendor_applications
		SET status = $1, reviewed_by = $2, reviewed_at = $3, updated_at = $3
		WHERE id = $4 AND status = 'pending'`

	tag, err := tx.Exec(ctx, query, status, reviewedBy, reviewedAt, id)
	if err != nil {
		return false, fmt.Errorf("mark application reviewed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanApplication(row rowScanner) (*domain.VendorApplication, error) {
	a := &domain.VendorApplication{}
	err := row.Scan(
		&a.ID, &a.ApplicationNumber, &a.BusinessName, &a.BusinessType, &a.TaxID, &a.BusinessLicense,
		&a.YearsInBusiness, &a.OwnerName, &a.Email, &a.Phone, &a.Address, &a.City, &a.State, &a.ZipCode,
		&a.PreferredTerminals, &a.ShopType, &a.ExpectedRevenue, &a.Description, &a.Website, &a.SocialMedia,
		&a.Status, &a.ReviewedBy, &a.ReviewedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}
