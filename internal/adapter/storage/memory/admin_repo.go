package memory

import (
	"context"

	"airport-vms/internal/core/domain"

	"github.com/google/uuid"
)

// AdminRepo implements ports.AdminRepository.
type AdminRepo struct {
	s *Store
}

func (r *AdminRepo) Create(_ context.Context, a *domain.AdminUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.admins {
		if existing.Email == a.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.s.admins[a.ID] = cloneAdmin(a)
	return nil
}

func (r *AdminRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if a, ok := r.s.admins[id]; ok {
		return cloneAdmin(a), nil
	}
	return nil, nil
}

func (r *AdminRepo) GetByEmail(_ context.Context, email string) (*domain.AdminUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.admins {
		if a.Email == email {
			return cloneAdmin(a), nil
		}
	}
	return nil, nil
}
