package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"
	"airport-vms/pkg/apperror"

	"github.com/rs/zerolog"
)

var targetStatusPattern = regexp.MustCompile(`^[a-z_]{1,32}$`)

const defaultReviewLockTTL = 30 * time.Second

// ReviewServiceDeps holds the collaborators of the review service.
// Locker, Events and Metrics are optional.
type ReviewServiceDeps struct {
	Applications ports.ApplicationRepository
	Transactor   ports.DBTransactor
	Provisioner  ports.AccountProvisioner
	Credentials  ports.CredentialGenerator
	Notifier     ports.NotificationDispatcher
	Locker       ports.ReviewLocker
	Events       ports.EventPublisher
	Metrics      ports.Metrics
	LockTTL      time.Duration
	Log          zerolog.Logger
}

type reviewService struct {
	apps        ports.ApplicationRepository
	transactor  ports.DBTransactor
	provisioner ports.AccountProvisioner
	credentials ports.CredentialGenerator
	notifier    ports.NotificationDispatcher
	locker      ports.ReviewLocker
	events      ports.EventPublisher
	metrics     ports.Metrics
	lockTTL     time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

// NewReviewService creates the application review state machine.
func NewReviewService(d ReviewServiceDeps) ports.ReviewService {
	ttl := d.LockTTL
	if ttl <= 0 {
		ttl = defaultReviewLockTTL
	}
	return &reviewService{
		apps:        d.Applications,
		transactor:  d.Transactor,
		provisioner: d.Provisioner,
		credentials: d.Credentials,
		notifier:    d.Notifier,
		locker:      d.Locker,
		events:      orNopPublisher(d.Events),
		metrics:     orNopMetrics(d.Metrics),
		lockTTL:     ttl,
		log:         d.Log,
		now:         time.Now,
	}
}

// Review decides a pending application.
//
// The status change and, on approval, the vendor account are written in one
// transaction guarded by a pending-only conditional update, so an application
// is decided at most once and never left approved without its account.
// Notices are sent after commit; their failure only clears Notified.
func (s *reviewService) Review(ctx context.Context, req ports.ReviewRequest) (*ports.ReviewOutcome, error) {
	start := s.now()

	if fields := validateReviewRequest(req); fields != nil {
		return nil, apperror.Validation("Invalid review request", fields)
	}
	reviewedBy := strings.TrimSpace(req.ReviewedBy)
	log := s.log.With().
		Str("application_id", req.ApplicationID.String()).
		Str("target_status", string(req.Status)).
		Logger()

	release, err := s.lock(ctx, req.ApplicationID.String(), log)
	if err != nil {
		return nil, err
	}
	defer release()

	app, err := s.apps.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("get application: %w", err))
	}
	if app == nil {
		return nil, apperror.ErrNotFound("Application")
	}
	if !app.IsPending() {
		return nil, apperror.ErrAlreadyReviewed()
	}

	decided := *app
	decided.MarkReviewed(req.Status, reviewedBy, s.now().UTC())

	vendor, secret, err := s.commitDecision(ctx, &decided)
	if err != nil {
		log.Warn().Err(err).Msg("review aborted")
		return nil, err
	}

	outcome := &ports.ReviewOutcome{
		Application:     &decided,
		Vendor:          vendor,
		PlaintextSecret: secret,
	}
	s.notify(ctx, &decided, secret, req.Reason, outcome, log)

	s.metrics.ApplicationReviewed(decided.Status, s.now().Sub(start))
	log.Info().
		Str("application_number", decided.ApplicationNumber).
		Str("reviewed_by", reviewedBy).
		Bool("provisioned", vendor != nil).
		Bool("notified", outcome.Notified).
		Msg("application reviewed")

	event := domain.ApplicationEvent{
		Type:              domain.EventApplicationReviewed,
		ApplicationID:     decided.ID,
		ApplicationNumber: decided.ApplicationNumber,
		Email:             decided.Email,
		Status:            decided.Status,
		ReviewedBy:        reviewedBy,
		Notified:          outcome.Notified,
		OccurredAt:        *decided.ReviewedAt,
	}
	if vendor != nil {
		event.VendorID = &vendor.ID
	}
	publishEvent(ctx, s.events, s.log, event)

	return outcome, nil
}

// commitDecision persists the decision and, for approvals, provisions the vendor.
func (s *reviewService) commitDecision(ctx context.Context, app *domain.VendorApplication) (*domain.VendorAccount, string, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, "", apperror.ErrPersistence(fmt.Errorf("begin review tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	updated, err := s.apps.MarkReviewed(ctx, dbTx, app.ID, app.Status, *app.ReviewedBy, *app.ReviewedAt)
	if err != nil {
		return nil, "", apperror.ErrPersistence(fmt.Errorf("mark reviewed: %w", err))
	}
	if !updated {
		return nil, "", apperror.ErrAlreadyReviewed()
	}

	var (
		vendor *domain.VendorAccount
		secret string
	)
	if app.Status == domain.ApplicationStatusApproved {
		secret = s.credentials.GenerateSecret()
		vendor, err = s.provisioner.Provision(ctx, dbTx, app, secret)
		if err != nil {
			return nil, "", err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, "", apperror.ErrPersistence(fmt.Errorf("commit review tx: %w", err))
	}
	if vendor != nil {
		s.metrics.VendorProvisioned()
	}
	return vendor, secret, nil
}

// notify runs detached from the request's cancellation, bounded by the dispatcher timeout.
func (s *reviewService) notify(ctx context.Context, app *domain.VendorApplication, secret, reason string, outcome *ports.ReviewOutcome, log zerolog.Logger) {
	ctx = context.WithoutCancel(ctx)

	var (
		kind string
		err  error
	)
	switch app.Status {
	case domain.ApplicationStatusApproved:
		kind = "approval"
		err = s.notifier.SendApprovalNotice(ctx, app.Email, app.OwnerName, domain.Credentials{
			LoginID:  app.Email,
			Password: secret,
		})
	case domain.ApplicationStatusRejected:
		kind = "rejection"
		err = s.notifier.SendRejectionNotice(ctx, app.Email, app.OwnerName, reason)
	default:
		return
	}

	if err != nil {
		s.metrics.NotificationFailed(kind)
		outcome.NotificationError = err
		log.Warn().Err(err).Str("kind", kind).Msg("notification failed, decision kept")
		return
	}
	outcome.Notified = true
}

// lock takes the advisory review lock. Lock store errors degrade to running unlocked;
// the conditional update still guarantees a single decision.
func (s *reviewService) lock(ctx context.Context, id string, log zerolog.Logger) (func(), error) {
	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}

	token, acquired, err := s.locker.Acquire(ctx, id, s.lockTTL)
	if err != nil {
		log.Warn().Err(err).Msg("review lock unavailable, continuing without it")
		return noop, nil
	}
	if !acquired {
		return nil, apperror.ErrReviewInProgress()
	}

	return func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), id, token); err != nil {
			log.Warn().Err(err).Msg("failed to release review lock")
		}
	}, nil
}

func validateReviewRequest(req ports.ReviewRequest) map[string]string {
	fields := make(map[string]string)
	switch {
	case req.Status == "":
		fields["status"] = "is required"
	case req.Status == domain.ApplicationStatusPending:
		fields["status"] = "must be a decision, not pending"
	case !targetStatusPattern.MatchString(string(req.Status)):
		fields["status"] = "must be lower-case letters or underscores"
	}
	if strings.TrimSpace(req.ReviewedBy) == "" {
		fields["reviewedBy"] = "is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
