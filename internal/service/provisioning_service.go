package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"
	"airport-vms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type accountProvisioner struct {
	vendors ports.VendorRepository
	hashSvc ports.HashService
	now     func() time.Time
}

// NewAccountProvisioner creates the provisioner for approved applications.
func NewAccountProvisioner(vendors ports.VendorRepository, hashSvc ports.HashService) ports.AccountProvisioner {
	return &accountProvisioner{vendors: vendors, hashSvc: hashSvc, now: time.Now}
}

// Provision creates an active vendor account from an approved application.
// Only the hash of plaintextSecret is stored.
func (p *accountProvisioner) Provision(ctx context.Context, tx pgx.Tx, app *domain.VendorApplication, plaintextSecret string) (*domain.VendorAccount, error) {
	if app == nil || app.Status != domain.ApplicationStatusApproved {
		return nil, apperror.Validation("Only approved applications can be provisioned", nil)
	}
	if plaintextSecret == "" {
		return nil, apperror.Validation("A login secret is required", nil)
	}

	hash, err := p.hashSvc.Hash(plaintextSecret)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash vendor secret: %w", err))
	}

	now := p.now().UTC()
	vendor := &domain.VendorAccount{
		ID:              uuid.New(),
		ApplicationID:   app.ID,
		PasswordHash:    hash,
		Name:            app.OwnerName,
		BusinessProfile: app.BusinessProfile.Snapshot(),
		Role:            domain.RoleVendor,
		Status:          domain.VendorStatusActive,
		Permissions:     slices.Clone(domain.DefaultVendorPermissions),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := p.vendors.Create(ctx, tx, vendor); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, apperror.ErrVendorExists(err)
		}
		return nil, apperror.ErrPersistence(fmt.Errorf("create vendor: %w", err))
	}
	return vendor, nil
}
