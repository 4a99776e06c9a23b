package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"
	"airport-vms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/rs/zerolog"
)

const (
	applicationNumberPrefix = "APP-"
	// The first attempt derives the number from the clock; retries draw random digits.
	maxApplicationNumberAttempts = 5
)

type applicationService struct {
	repo    ports.ApplicationRepository
	events  ports.EventPublisher
	metrics ports.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewApplicationService creates the intake service. events and metrics may be nil.
func NewApplicationService(
	repo ports.ApplicationRepository,
	events ports.EventPublisher,
	metrics ports.Metrics,
	log zerolog.Logger,
) ports.ApplicationService {
	return &applicationService{
		repo:    repo,
		events:  orNopPublisher(events),
		metrics: orNopMetrics(metrics),
		log:     log,
		now:     time.Now,
	}
}

// Submit validates and stores a new pending application.
func (s *applicationService) Submit(ctx context.Context, profile domain.BusinessProfile) (*domain.VendorApplication, error) {
	profile = normalizeProfile(profile)
	if fields := profile.Validate(); fields != nil {
		return nil, apperror.Validation("Invalid application", fields)
	}

	existing, err := s.repo.GetByEmail(ctx, profile.Email)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateEmail()
	}

	now := s.now().UTC()
	app := &domain.VendorApplication{
		ID:              uuid.New(),
		BusinessProfile: profile,
		Status:          domain.ApplicationStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.insertWithNumber(ctx, app, now); err != nil {
		return nil, err
	}

	s.metrics.ApplicationSubmitted()
	s.log.Info().
		Str("application_id", app.ID.String()).
		Str("application_number", app.ApplicationNumber).
		Msg("application submitted")

	publishEvent(ctx, s.events, s.log, domain.ApplicationEvent{
		Type:              domain.EventApplicationSubmitted,
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		Email:             app.Email,
		Status:            app.Status,
		OccurredAt:        now,
	})

	return app, nil
}

func (s *applicationService) insertWithNumber(ctx context.Context, app *domain.VendorApplication, now time.Time) error {
	for attempt := 0; attempt < maxApplicationNumberAttempts; attempt++ {
		if attempt == 0 {
			app.ApplicationNumber = applicationNumberFromTime(now)
		} else {
			n, err := randomApplicationNumber()
			if err != nil {
				return apperror.InternalError(err)
			}
			app.ApplicationNumber = n
		}

		err := s.repo.Create(ctx, app)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, domain.ErrDuplicateApplicationNumber):
			s.log.Debug().Str("application_number", app.ApplicationNumber).Int("attempt", attempt+1).Msg("application number taken, retrying")
			continue
		case errors.Is(err, domain.ErrDuplicateEmail):
			// Lost a race with a concurrent submission for the same email.
			return apperror.ErrDuplicateEmail()
		default:
			return apperror.ErrPersistence(fmt.Errorf("create application: %w", err))
		}
	}
	return apperror.ErrPersistence(fmt.Errorf("allocate application number after %d attempts: %w",
		maxApplicationNumberAttempts, domain.ErrDuplicateApplicationNumber))
}

// Get returns one application by id.
func (s *applicationService) Get(ctx context.Context, id uuid.UUID) (*domain.VendorApplication, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("get application: %w", err))
	}
	if app == nil {
		return nil, apperror.ErrNotFound("Application")
	}
	return app, nil
}

// List returns applications newest first, optionally filtered by status.
func (s *applicationService) List(ctx context.Context, status *domain.ApplicationStatus) ([]domain.VendorApplication, error) {
	apps, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("list applications: %w", err))
	}
	if apps == nil {
		apps = []domain.VendorApplication{}
	}
	return apps, nil
}

// CheckByEmail looks up the application submitted for an email.
func (s *applicationService) CheckByEmail(ctx context.Context, email string) (*domain.VendorApplication, error) {
	app, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("check application: %w", err))
	}
	if app == nil {
		return nil, apperror.ErrNotFound("Application")
	}
	return app, nil
}

func normalizeProfile(p domain.BusinessProfile) domain.BusinessProfile {
	p = p.Snapshot()
	p.Email = domain.NormalizeEmail(p.Email)
	p.BusinessName = strings.TrimSpace(p.BusinessName)
	p.OwnerName = strings.TrimSpace(p.OwnerName)

	terminals := p.PreferredTerminals[:0]
	seen := make(map[string]struct{}, len(p.PreferredTerminals))
	for _, t := range p.PreferredTerminals {
		t = strings.TrimSpace(t)
		if _, dup := seen[t]; t == "" || dup {
			continue
		}
		seen[t] = struct{}{}
		terminals = append(terminals, t)
	}
	p.PreferredTerminals = terminals
	return p
}

// applicationNumberFromTime uses the last six digits of the millisecond clock.
func applicationNumberFromTime(t time.Time) string {
	return fmt.Sprintf("%s%06d", applicationNumberPrefix, t.UnixMilli()%1_000_000)
}

func randomApplicationNumber() (string, error) {
	gen, err := nanoid.CustomASCII("0123456789", 6)
	if err != nil {
		return "", fmt.Errorf("random application number: %w", err)
	}
	return applicationNumberPrefix + gen(), nil
}

// publishEvent is best-effort: failures are logged and never returned.
func publishEvent(ctx context.Context, pub ports.EventPublisher, log zerolog.Logger, event domain.ApplicationEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := pub.Publish(ctx, event); err != nil {
		log.Warn().Err(err).
			Str("event", string(event.Type)).
			Str("application_id", event.ApplicationID.String()).
			Msg("failed to publish application event")
	}
}
