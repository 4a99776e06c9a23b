package memory

import (
	"context"
	"sort"
	"time"

	"airport-vms/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ApplicationRepo implements ports.ApplicationRepository.
type ApplicationRepo struct {
	s *Store
}

func (r *ApplicationRepo) Create(_ context.Context, a *domain.VendorApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.applications {
		if existing.Email == a.Email {
			return domain.ErrDuplicateEmail
		}
		if existing.ApplicationNumber == a.ApplicationNumber {
			return domain.ErrDuplicateApplicationNumber
		}
	}
	r.s.applications[a.ID] = cloneApplication(a)
	return nil
}

func (r *ApplicationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.VendorApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.applications[id]
	if !ok {
		return nil, nil
	}
	return cloneApplication(a), nil
}

func (r *ApplicationRepo) GetByEmail(_ context.Context, email string) (*domain.VendorApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.applications {
		if a.Email == email {
			return cloneApplication(a), nil
		}
	}
	return nil, nil
}

// List returns applications newest first, filtered by status when given.
func (r *ApplicationRepo) List(_ context.Context, status *domain.ApplicationStatus) ([]domain.VendorApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	apps := make([]domain.VendorApplication, 0, len(r.s.applications))
	for _, a := range r.s.applications {
		if status != nil && a.Status != *status {
			continue
		}
		apps = append(apps, *cloneApplication(a))
	}
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].ApplicationNumber > apps[j].ApplicationNumber
		}
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps, nil
}

// MarkReviewed sets the decision only while the application is pending.
func (r *ApplicationRepo) MarkReviewed(_ context.Context, tx pgx.Tx, id uuid.UUID, status domain.ApplicationStatus, reviewedBy string, reviewedAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.applications[id]
	if !ok || !a.IsPending() {
		return false, nil
	}

	prev := cloneApplication(a)
	if err := r.s.record(tx, func() { r.s.applications[id] = prev }); err != nil {
		return false, err
	}
	a.MarkReviewed(status, reviewedBy, reviewedAt)
	return true, nil
}
