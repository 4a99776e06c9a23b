package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"
	"airport-vms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var defaultAdminPermissions = []string{"review_applications", "manage_vendors", "view_reports"}

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	admins   ports.AdminRepository
	vendors  ports.VendorRepository
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
	log      zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	admins ports.AdminRepository,
	vendors ports.VendorRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		admins:   admins,
		vendors:  vendors,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
		log:      log,
	}
}

// EnsureAdmin creates the admin if no admin with that email exists.
func (s *AuthServiceImpl) EnsureAdmin(ctx context.Context, email, name, password string) (*domain.AdminUser, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.Validation("Admin email and password are required", nil)
	}

	existing, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("find admin: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	hash, err := s.hashSvc.Hash(password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	admin := &domain.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Permissions:  slices.Clone(defaultAdminPermissions),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("create admin: %w", err))
	}

	s.log.Info().Str("admin_id", admin.ID.String()).Str("email", email).Msg("admin account bootstrapped")
	return admin, nil
}

// Login checks admins first, then vendors, and issues a session token.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("find admin: %w", err))
	}
	if admin != nil {
		if err := s.checkPassword(password, admin.PasswordHash); err != nil {
			return nil, err
		}
		return s.issue(adminPrincipal(admin))
	}

	vendor, err := s.vendors.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("find vendor: %w", err))
	}
	if vendor == nil {
		return nil, apperror.ErrInvalidCredentials()
	}
	if err := s.checkPassword(password, vendor.PasswordHash); err != nil {
		return nil, err
	}
	if !vendor.IsActive() {
		return nil, apperror.ErrAccountInactive()
	}
	return s.issue(vendorPrincipal(vendor))
}

// Verify resolves a session token to the current user record.
func (s *AuthServiceImpl) Verify(ctx context.Context, token string) (*ports.Principal, error) {
	claims, err := s.tokenSvc.Validate(token)
	if err != nil {
		return nil, apperror.ErrInvalidToken()
	}

	switch claims.Role {
	case domain.RoleAdmin:
		admin, err := s.admins.GetByID(ctx, claims.Subject)
		if err != nil {
			return nil, apperror.ErrPersistence(fmt.Errorf("find admin: %w", err))
		}
		if admin == nil {
			return nil, apperror.ErrInvalidToken()
		}
		p := adminPrincipal(admin)
		return &p, nil
	case domain.RoleVendor:
		vendor, err := s.vendors.GetByID(ctx, claims.Subject)
		if err != nil {
			return nil, apperror.ErrPersistence(fmt.Errorf("find vendor: %w", err))
		}
		if vendor == nil {
			return nil, apperror.ErrInvalidToken()
		}
		if !vendor.IsActive() {
			return nil, apperror.ErrAccountInactive()
		}
		p := vendorPrincipal(vendor)
		return &p, nil
	}
	return nil, apperror.ErrInvalidToken()
}

func (s *AuthServiceImpl) checkPassword(password, hash string) error {
	valid, err := s.hashSvc.Verify(password, hash)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return apperror.ErrInvalidCredentials()
	}
	return nil
}

func (s *AuthServiceImpl) issue(p ports.Principal) (*ports.LoginResult, error) {
	token, expiresAt, err := s.tokenSvc.Generate(p.ID, p.Role, p.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: p}, nil
}

func adminPrincipal(a *domain.AdminUser) ports.Principal {
	return ports.Principal{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        domain.RoleAdmin,
		Permissions: a.Permissions,
	}
}

func vendorPrincipal(v *domain.VendorAccount) ports.Principal {
	return ports.Principal{
		ID:           v.ID,
		Email:        v.Email,
		Name:         v.Name,
		Role:         domain.RoleVendor,
		BusinessName: v.BusinessName,
		Permissions:  v.Permissions,
	}
}
