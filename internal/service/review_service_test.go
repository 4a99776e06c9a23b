package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"
	"airport-vms/internal/core/ports/mocks"
	"airport-vms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reviewMocks struct {
	apps        *mocks.MockApplicationRepository
	transactor  *mocks.MockDBTransactor
	provisioner *mocks.MockAccountProvisioner
	creds       *mocks.MockCredentialGenerator
	notifier    *mocks.MockNotificationDispatcher
	locker      *mocks.MockReviewLocker
	events      *mocks.MockEventPublisher
}

func setupReviewService(t *testing.T) (*reviewService, *reviewMocks) {
	ctrl := gomock.NewController(t)
	m := &reviewMocks{
		apps:        mocks.NewMockApplicationRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		provisioner: mocks.NewMockAccountProvisioner(ctrl),
		creds:       mocks.NewMockCredentialGenerator(ctrl),
		notifier:    mocks.NewMockNotificationDispatcher(ctrl),
		locker:      mocks.NewMockReviewLocker(ctrl),
		events:      mocks.NewMockEventPublisher(ctrl),
	}
	svc := NewReviewService(ReviewServiceDeps{
		Applications: m.apps,
		Transactor:   m.transactor,
		Provisioner:  m.provisioner,
		Credentials:  m.creds,
		Notifier:     m.notifier,
		Locker:       m.locker,
		Events:       m.events,
		LockTTL:      time.Minute,
		Log:          newTestLogger(),
	}).(*reviewService)
	return svc, m
}

func (m *reviewMocks) expectLock(id uuid.UUID) {
	m.locker.EXPECT().Acquire(gomock.Any(), id.String(), time.Minute).Return("tok-1", true, nil)
	m.locker.EXPECT().Release(gomock.Any(), id.String(), "tok-1").Return(nil)
}

func TestReviewService_Approve(t *testing.T) {
	svc, m := setupReviewService(t)
	app := pendingApplication()
	tx := &mockTx{}
	vendor := &domain.VendorAccount{ID: uuid.New(), ApplicationID: app.ID, BusinessProfile: app.Snapshot()}

	m.expectLock(app.ID)
	m.apps.EXPECT().GetByID(gomock.Any(), app.ID).Return(app, nil)
	m.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.apps.EXPECT().MarkReviewed(gomock.Any(), tx, app.ID, domain.ApplicationStatusApproved, "admin-1", gomock.Any()).Return(true, nil)
	m.creds.EXPECT().GenerateSecret().Return("Xy12Xy12Xy12Xy12Xy12")
	m.provisioner.EXPECT().Provision(gomock.Any(), tx, gomock.Any(), "Xy12Xy12Xy12Xy12Xy12").DoAndReturn(
		func(_ context.Context, _ pgx.Tx, a *domain.VendorApplication, _ string) (*domain.VendorAccount, error) {
			assert.Equal(t, domain.ApplicationStatusApproved, a.Status)
			return vendor, nil
		})
	m.notifier.EXPECT().SendApprovalNotice(gomock.Any(), "a@b.com", "Ada Park", domain.Credentials{
		LoginID:  "a@b.com",
		Password: "Xy12Xy12Xy12Xy12Xy12",
	}).Return(nil)
	m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e domain.ApplicationEvent) error {
			assert.Equal(t, domain.EventApplicationReviewed, e.Type)
			assert.Equal(t, domain.ApplicationStatusApproved, e.Status)
			require.NotNil(t, e.VendorID)
			assert.Equal(t, vendor.ID, *e.VendorID)
			assert.True(t, e.Notified)
			return nil
		})

	out, err := svc.Review(context.Background(), ports.ReviewRequest{
		ApplicationID: app.ID,
		Status:        domain.ApplicationStatusApproved,
		ReviewedBy:    "admin-1",
	})
	require.NoError(t, err)

	assert.True(t, tx.committed)
	assert.Equal(t, domain.ApplicationStatusApproved, out.Application.Status)
	require.NotNil(t, out.Application.ReviewedBy)
	assert.Equal(t, "admin-1", *out.Application.ReviewedBy)
	assert.NotNil(t, out.Application.ReviewedAt)
	assert.Same(t, vendor, out.Vendor)
	assert.Equal(t, "Xy12Xy12Xy12Xy12Xy12", out.PlaintextSecret)
	assert.True(t, out.Notified)
	assert.NoError(t, out.NotificationError)
	assert.Equal(t, domain.ApplicationStatusPending, app.Status, "loaded record is not mutated")
}

func TestReviewService_Reject(t *testing.T) {
	svc, m := setupReviewService(t)
	app := pendingApplication()
	tx := &mockTx{}

	m.expectLock(app.ID)
	m.apps.EXPECT().GetByID(gomock.Any(), app.ID).Return(app, nil)
	m.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.apps.EXPECT().MarkReviewed(gomock.Any(), tx, app.ID, domain.ApplicationStatusRejected, "admin-1", gomock.Any()).Return(true, nil)
	m.notifier.EXPECT().SendRejectionNotice(gomock.Any(), "a@b.com", "Ada Park", "Incomplete documents").Return(nil)
	m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	out, err := svc.Review(context.Background(), ports.ReviewRequest{
		ApplicationID: app.ID,
		Status:        domain.ApplicationStatusRejected,
		ReviewedBy:    "admin-1",
		Reason:        "Incomplete documents",
	})
	require.NoError(t, err)

	assert.True(t, tx.committed)
	assert.Nil(t, out.Vendor)
	assert.Empty(t, out.PlaintextSecret)
	assert.True(t, out.Notified)
}

func TestReviewService_OtherStatus_NoNotice(t *testing.T) {
	svc, m := setupReviewService(t)
	app := pendingApplication()
	tx := &mockTx{}

	m.expectLock(app.ID)
	m.apps.EXPECT().GetByID(gomock.Any(), app.ID).Return(app, nil)
	m.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.apps.EXPECT().MarkReviewed(gomock.Any(), tx, app.ID, domain.ApplicationStatus("on_hold"), "admin-1", gomock.Any()).Return(true, nil)
	m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	out, err := svc.Review(context.Background(), ports.ReviewRequest{
		ApplicationID: app.ID,
		Status:        "on_hold",
		ReviewedBy:    "admin-1",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ApplicationStatus("on_hold"), out.Application.Status)
	assert.Nil(t, out.Vendor)
	assert.False(t, out.Notified)
	assert.NoError(t, out.NotificationError)
}

func TestReviewService_NotFound(t *testing.T) {
	svc, m := setupReviewService(t)
	id := uuid.New()

	m.expectLock(id)
	m.apps.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, err := svc.Review(context.Background(), ports.ReviewRequest{
		ApplicationID: id,
		Status:        domain.ApplicationStatusApproved,
		ReviewedBy:    "admin-1",
	})
	appErr := requireAppError(t, err, "APP_003")
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestReviewService_AlreadyReviewed(t *testing.T) {
	svc, m := setupReviewService(t)
	app := pendingApplication()
	app.MarkReviewed(domain.ApplicationStatusRejected, "admin-0", time.Now())

	m.expectLock(app.ID)
	m.apps.EXPECT().GetByID(gomock.Any(), app.ID).Return(app, nil)

	_, err := svc.Review(context.Background(), ports.ReviewRequest{
		ApplicationID: app.ID,
		Status:        domain.ApplicationStatusApproved,
		ReviewedBy:    "admin-1",
	})
	appErr := requireAppError(t, err, "APP_004")
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestReviewService_LostConditionalUpdate(t *testing.T) {
	svc, m := setupReviewService(t)
	app := pendingApplication()
	tx := &mockTx{}

	m.expectLock(app.ID)
	m.apps.EXPECT().GetByID(gomock.Any(), app.ID).Return(app, nil)
	m.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.apps.EXPECT().MarkReviewed(gomock.Any(), tx, app.ID, gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	_, err := svc.Review(context.Background(), ports.ReviewRequest{
		ApplicationID: app.ID,
		Status:        domain.ApplicationStatusApproved,
		ReviewedBy:    "admin-1",
	})
	requireAppError(t, err, "APP_004")
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestReviewService_ProvisioningFailureRollsBack(t *testing.T) {
	svc, m := setupReviewService(t)
	app := pendingApplication()
	tx := &mockTx{}

	m.expectLock(app.ID)
	m.apps.EXPECT().GetByID(gomock.Any(), app.ID).Return(app, nil)
	m.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.apps.EXPECT().MarkReviewed(gomock.Any(), tx, app.ID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	m.creds.EXPECT().GenerateSecret().Return("secret")
	m.provisioner.EXPECT().Provision(gomock.Any(), tx, gomock.Any(), "secret").
		Return(nil, apperror.ErrVendorExists(domain.ErrDuplicateEmail))

	_, err := svc.Review(context.Background(), ports.ReviewRequest{
		ApplicationID: app.ID,
		Status:        domain.ApplicationStatusApproved,
		ReviewedBy:    "admin-1",
	})
	appErr := requireAppError(t, err, "APP_002")
	assert.Equal(t, 409, appErr.HTTPStatus)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestReviewService_BeginFailure(t *testing.T) {
	svc, m := setupReviewService(t)
	app := pendingApplication()

	m.expectLock(app.ID)
	m.apps.EXPECT().GetByID(gomock.Any(), app.ID).Return(app, nil)
	m.transactor.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("pool exhausted"))

	_, err := svc.Review(context.Background(), ports.ReviewRequest{
		ApplicationID: app.ID,
		Status:        domain.ApplicationStatusRejected,
		ReviewedBy:    "admin-1",
	})
	requireAppError(t, err, "SYS_001")
}

func TestReviewService_NotificationFailureKeepsDecision(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := setupReviewService(t)
	metrics := mocks.NewMockMetrics(ctrl)
	svc.metrics = metrics

	app := pendingApplication()
	tx := &mockTx{}
	vendor := &domain.VendorAccount{ID: uuid.New()}
	mailErr := errors.Join(domain.ErrNotificationFailed, errors.New("smtp down"))

	m.expectLock(app.ID)
	m.apps.EXPECT().GetByID(gomock.Any(), app.ID).Return(app, nil)
	m.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.apps.EXPECT().MarkReviewed(gomock.Any(), tx, app.ID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	m.creds.EXPECT().GenerateSecret().Return("secret")
	m.provisioner.EXPECT().Provision(gomock.Any(), tx, gomock.Any(), "secret").Return(vendor, nil)
	m.notifier.EXPECT().SendApprovalNotice(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(mailErr)
	m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	metrics.EXPECT().VendorProvisioned()
	metrics.EXPECT().NotificationFailed("approval")
	metrics.EXPECT().ApplicationReviewed(domain.ApplicationStatusApproved, gomock.Any())

	out, err := svc.Review(context.Background(), ports.ReviewRequest{
		ApplicationID: app.ID,
		Status:        domain.ApplicationStatusApproved,
		ReviewedBy:    "admin-1",
	})
	require.NoError(t, err)

	assert.True(t, tx.committed)
	assert.Same(t, vendor, out.Vendor)
	assert.False(t, out.Notified)
	assert.ErrorIs(t, out.NotificationError, domain.ErrNotificationFailed)
	assert.Equal(t, "secret", out.PlaintextSecret, "operator still receives the secret")
}

func TestReviewService_NotificationSurvivesCancelledRequest(t *testing.T) {
	svc, m := setupReviewService(t)
	app := pendingApplication()
	tx := &mockTx{}

	ctx, cancel := context.WithCancel(context.Background())

	m.expectLock(app.ID)
	m.apps.EXPECT().GetByID(gomock.Any(), app.ID).Return(app, nil)
	m.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.apps.EXPECT().MarkReviewed(gomock.Any(), tx, app.ID, gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, pgx.Tx, uuid.UUID, domain.ApplicationStatus, string, time.Time) (bool, error) {
			cancel()
			return true, nil
		})
	m.notifier.EXPECT().SendRejectionNotice(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _, _, _ string) error {
			return ctx.Err()
		})
	m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	out, err := svc.Review(ctx, ports.ReviewRequest{
		ApplicationID: app.ID,
		Status:        domain.ApplicationStatusRejected,
		ReviewedBy:    "admin-1",
	})
	require.NoError(t, err)
	assert.True(t, out.Notified)
}

func TestReviewService_LockHeld(t *testing.T) {
	svc, m := setupReviewService(t)
	id := uuid.New()

	m.locker.EXPECT().Acquire(gomock.Any(), id.String(), time.Minute).Return("", false, nil)

	_, err := svc.Review(context.Background(), ports.ReviewRequest{
		ApplicationID: id,
		Status:        domain.ApplicationStatusApproved,
		ReviewedBy:    "admin-1",
	})
	appErr := requireAppError(t, err, "APP_005")
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestReviewService_LockErrorDegrades(t *testing.T) {
	svc, m := setupReviewService(t)
	app := pendingApplication()
	tx := &mockTx{}

	m.locker.EXPECT().Acquire(gomock.Any(), app.ID.String(), time.Minute).Return("", false, errors.New("redis: connection refused"))
	m.apps.EXPECT().GetByID(gomock.Any(), app.ID).Return(app, nil)
	m.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.apps.EXPECT().MarkReviewed(gomock.Any(), tx, app.ID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	m.notifier.EXPECT().SendRejectionNotice(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Review(context.Background(), ports.ReviewRequest{
		ApplicationID: app.ID,
		Status:        domain.ApplicationStatusRejected,
		ReviewedBy:    "admin-1",
	})
	require.NoError(t, err)
	assert.True(t, tx.committed)
}

func TestReviewService_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   ports.ReviewRequest
		field string
	}{
		{"missing status", ports.ReviewRequest{ReviewedBy: "admin"}, "status"},
		{"pending is not a decision", ports.ReviewRequest{Status: domain.ApplicationStatusPending, ReviewedBy: "admin"}, "status"},
		{"malformed status", ports.ReviewRequest{Status: "Approved!", ReviewedBy: "admin"}, "status"},
		{"missing reviewer", ports.ReviewRequest{Status: domain.ApplicationStatusApproved, ReviewedBy: "  "}, "reviewedBy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupReviewService(t)
			tt.req.ApplicationID = uuid.New()

			_, err := svc.Review(context.Background(), tt.req)
			appErr := requireAppError(t, err, "APP_001")
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}
