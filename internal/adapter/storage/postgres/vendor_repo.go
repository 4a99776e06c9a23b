package postgres

import (
	"context"
	"errors"
	"fmt"

	"airport-vms/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const vendorColumns = `id, application_id, password_hash, name, business_name, business_type, tax_id,
	business_license, years_in_business, owner_name, email, phone, address, city, state, zip_code,
	preferred_terminals, shop_type, expected_revenue, description, website, social_media,
	role, status, permissions, created_at, updated_at`

// VendorRepo implements ports.VendorRepository.
type VendorRepo struct {
	pool Pool
}

// NewVendorRepo creates a new VendorRepo.
func NewVendorRepo(pool Pool) *VendorRepo {
	return &VendorRepo{pool: pool}
}

// Create inserts a vendor account within the review transaction.
func (r *VendorRepo) Create(ctx context.Context, tx pgx.Tx, v *domain.VendorAccount) error {
	query := `INSERT INTO vendors (` + vendorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`

	_, err := tx.Exec(ctx, query,
		v.ID, v.ApplicationID, v.PasswordHash, v.Name, v.BusinessName, v.BusinessType, v.TaxID,
		v.BusinessLicense, v.YearsInBusiness, v.OwnerName, v.Email, v.Phone, v.Address, v.City, v.State, v.ZipCode,
		v.PreferredTerminals, v.ShopType, v.ExpectedRevenue, v.Description, v.Website, v.SocialMedia,
		v.Role, v.Status, v.Permissions, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := violatedConstraint(err); ok && constraint == constraintVendorEmail {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

// GetByID fetches a vendor by its UUID.
func (r *VendorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.VendorAccount, error) {
	return r.getOne(ctx, "id", id)
}

// GetByEmail fetches a vendor by login e-mail.
func (r *VendorRepo) GetByEmail(ctx context.Context, email string) (*domain.VendorAccount, error) {
	return r.getOne(ctx, "email", email)
}

// GetByApplicationID fetches the vendor provisioned from an application.
func (r *VendorRepo) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*domain.VendorAccount, error) {
	return r.getOne(ctx, "application_id", applicationID)
}

// getOne is only called with fixed column names.
func (r *VendorRepo) getOne(ctx context.Context, column string, arg any) (*domain.VendorAccount, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE ` + column + ` = $1`

	v := &domain.VendorAccount{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&v.ID, &v.ApplicationID, &v.PasswordHash, &v.Name, &v.BusinessName, &v.BusinessType, &v.TaxID,
		&v.BusinessLicense, &v.YearsInBusiness, &v.OwnerName, &v.Email, &v.Phone, &v.Address, &v.City, &v.State, &v.ZipCode,
		&v.PreferredTerminals, &v.ShopType, &v.ExpectedRevenue, &v.Description, &v.Website, &v.SocialMedia,
		&v.Role, &v.Status, &v.Permissions, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vendor by %s: %w", column, err)
	}
	return v, nil
}
