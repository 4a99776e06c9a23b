package ports

import (
	"context"
	"time"

	"airport-vms/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(subject uuid.UUID, role, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject uuid.UUID
	Role    string
	Email   string
}

// CredentialGenerator produces login material for new accounts.
type CredentialGenerator interface {
	GenerateSecret() string
	GenerateLoginID() string
}

// MailTransport delivers a rendered message.
type MailTransport interface {
	Send(ctx context.Context, msg domain.MailMessage) error
}

// NotificationDispatcher sends review outcome notices.
// Errors wrap domain.ErrNotificationFailed.
type NotificationDispatcher interface {
	SendApprovalNotice(ctx context.Context, email, name string, creds domain.Credentials) error
	SendRejectionNotice(ctx context.Context, email, name, reason string) error
}

// AccountProvisioner creates the vendor account for an approved application.
type AccountProvisioner interface {
	Provision(ctx context.Context, tx pgx.Tx, app *domain.VendorApplication, plaintextSecret string) (*domain.VendorAccount, error)
}

// EventPublisher emits application lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ApplicationEvent) error
	Close() error
}

// ReviewLocker is an advisory lock taken around a review.
type ReviewLocker interface {
	// Acquire returns false if another holder owns the lock. The token
	// identifies this acquisition and must be passed to Release.
	Acquire(ctx context.Context, applicationID string, ttl time.Duration) (token string, acquired bool, err error)
	Release(ctx context.Context, applicationID, token string) error
}

// Metrics records workflow counters.
type Metrics interface {
	ApplicationSubmitted()
	ApplicationReviewed(status domain.ApplicationStatus, d time.Duration)
	VendorProvisioned()
	NotificationFailed(kind string)
}

// --- Service Ports (Business Logic) ---

// ApplicationService handles intake and lookup of vendor applications.
type ApplicationService interface {
	Submit(ctx context.Context, profile domain.BusinessProfile) (*domain.VendorApplication, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.VendorApplication, error)
	List(ctx context.Context, status *domain.ApplicationStatus) ([]domain.VendorApplication, error)
	CheckByEmail(ctx context.Context, email string) (*domain.VendorApplication, error)
}

// ReviewService decides applications.
type ReviewService interface {
	Review(ctx context.Context, req ReviewRequest) (*ReviewOutcome, error)
}

// ReviewRequest holds validated input for a review decision.
type ReviewRequest struct {
	ApplicationID uuid.UUID
	Status        domain.ApplicationStatus
	ReviewedBy    string
	Reason        string
}

// ReviewOutcome is the result of a decided review. PlaintextSecret is set
// only on approval and exists nowhere else once the response is written.
type ReviewOutcome struct {
	Application       *domain.VendorApplication
	Vendor            *domain.VendorAccount
	PlaintextSecret   string
	Notified          bool
	NotificationError error
}

// AuthService defines authentication business logic.
type AuthService interface {
	EnsureAdmin(ctx context.Context, email, name, password string) (*domain.AdminUser, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Verify(ctx context.Context, token string) (*Principal, error)
}

// Principal is an authenticated admin or vendor.
type Principal struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Role         string
	BusinessName string
	Permissions  []string
}

// LoginResult holds an issued session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      Principal
}

// AuditService records audited actions without blocking the caller.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
