// Package memory is a process-local record store for development and tests.
// It honours the same uniqueness and pending-only update rules as the
// PostgreSQL store. Data is lost on restart.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	_ ports.ApplicationRepository = (*ApplicationRepo)(nil)
	_ ports.VendorRepository      = (*VendorRepo)(nil)
	_ ports.AdminRepository       = (*AdminRepo)(nil)
	_ ports.AuditRepository       = (*AuditRepo)(nil)
	_ ports.DBTransactor          = (*Transactor)(nil)
	_ ports.HealthChecker         = (*Store)(nil)
	_ pgx.Tx                      = (*Tx)(nil)
)

var errForeignTx = errors.New("memory: transaction was not started by this store")

// Store holds all records. Writes inside a transaction are applied
// immediately and undone on rollback; transactions are serialized.
// Reads outside a transaction can observe uncommitted writes.
type Store struct {
	mu           sync.RWMutex
	applications map[uuid.UUID]*domain.VendorApplication
	vendors      map[uuid.UUID]*domain.VendorAccount
	admins       map[uuid.UUID]*domain.AdminUser
	audit        []domain.AuditLog

	txSem chan struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{
		applications: make(map[uuid.UUID]*domain.VendorApplication),
		vendors:      make(map[uuid.UUID]*domain.VendorAccount),
		admins:       make(map[uuid.UUID]*domain.AdminUser),
		txSem:        make(chan struct{}, 1),
	}
}

func (s *Store) Applications() *ApplicationRepo { return &ApplicationRepo{s: s} }
func (s *Store) Vendors() *VendorRepo           { return &VendorRepo{s: s} }
func (s *Store) Admins() *AdminRepo             { return &AdminRepo{s: s} }
func (s *Store) Audit() *AuditRepo              { return &AuditRepo{s: s} }
func (s *Store) Transactor() *Transactor        { return &Transactor{s: s} }

// Ping implements ports.HealthChecker.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Name() string { return "memory" }

// record registers undo on tx. Callers hold s.mu.
func (s *Store) record(tx pgx.Tx, undo func()) error {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return errForeignTx
	}
	if t.done {
		return pgx.ErrTxClosed
	}
	t.undo = append(t.undo, undo)
	return nil
}

func cloneApplication(a *domain.VendorApplication) *domain.VendorApplication {
	c := *a
	c.BusinessProfile = a.BusinessProfile.Snapshot()
	if a.ReviewedBy != nil {
		by := *a.ReviewedBy
		c.ReviewedBy = &by
	}
	if a.ReviewedAt != nil {
		at := *a.ReviewedAt
		c.ReviewedAt = &at
	}
	return &c
}

func cloneVendor(v *domain.VendorAccount) *domain.VendorAccount {
	c := *v
	c.BusinessProfile = v.BusinessProfile.Snapshot()
	c.Permissions = slices.Clone(v.Permissions)
	return &c
}

func cloneAdmin(a *domain.AdminUser) *domain.AdminUser {
	c := *a
	c.Permissions = slices.Clone(a.Permissions)
	return &c
}
