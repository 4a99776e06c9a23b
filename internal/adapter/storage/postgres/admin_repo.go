package postgres

import (
	"context"
	"errors"
	"fmt"

	"airport-vms/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AdminRepo implements ports.AdminRepository.
type AdminRepo struct {
	pool Pool
}

// NewAdminRepo creates a new AdminRepo.
func NewAdminRepo(pool Pool) *AdminRepo {
	return &AdminRepo{pool: pool}
}

func (r *AdminRepo) Create(ctx context.Context, a *domain.AdminUser) error {
	query := `INSERT INTO admins (id, email, name, password_hash, role, permissions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query, a.ID, a.Email, a.Name, a.PasswordHash, a.Role, a.Permissions, a.CreatedAt)
	if err != nil {
		if constraint, ok := violatedConstraint(err); ok && constraint == constraintAdminEmail {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *AdminRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	query := `SELECT id, email, name, password_hash, role, permissions, created_at FROM admins WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id), "id")
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	query := `SELECT id, email, name, password_hash, role, permissions, created_at FROM admins WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email), "email")
}

func (r *AdminRepo) scanOne(row pgx.Row, by string) (*domain.AdminUser, error) {
	a := &domain.AdminUser{}
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.Permissions, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin by %s: %w", by, err)
	}
	return a, nil
}
