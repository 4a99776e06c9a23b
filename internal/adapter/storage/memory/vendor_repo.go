package memory

import (
	"context"
	"fmt"

	"airport-vms/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// VendorRepo implements ports.VendorRepository.
type VendorRepo struct {
	s *Store
}

func (r *VendorRepo) Create(_ context.Context, tx pgx.Tx, v *domain.VendorAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.vendors {
		if existing.Email == v.Email {
			return domain.ErrDuplicateEmail
		}
		if existing.ApplicationID == v.ApplicationID {
			return fmt.Errorf("insert vendor: application %s already provisioned", v.ApplicationID)
		}
	}
	if err := r.s.record(tx, func() { delete(r.s.vendors, v.ID) }); err != nil {
		return err
	}
	r.s.vendors[v.ID] = cloneVendor(v)
	return nil
}

func (r *VendorRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.VendorAccount, error) {
	return r.find(func(v *domain.VendorAccount) bool { return v.ID == id }), nil
}

func (r *VendorRepo) GetByEmail(_ context.Context, email string) (*domain.VendorAccount, error) {
	return r.find(func(v *domain.VendorAccount) bool { return v.Email == email }), nil
}

func (r *VendorRepo) GetByApplicationID(_ context.Context, applicationID uuid.UUID) (*domain.VendorAccount, error) {
	return r.find(func(v *domain.VendorAccount) bool { return v.ApplicationID == applicationID }), nil
}

// Count returns the number of vendor accounts.
func (r *VendorRepo) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.vendors)
}

func (r *VendorRepo) find(match func(*domain.VendorAccount) bool) *domain.VendorAccount {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, v := range r.s.vendors {
		if match(v) {
			return cloneVendor(v)
		}
	}
	return nil
}
