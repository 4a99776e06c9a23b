package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports/mocks"
	"airport-vms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type applicationDeps struct {
	svc     *applicationService
	repo    *mocks.MockApplicationRepository
	events  *mocks.MockEventPublisher
	metrics *mocks.MockMetrics
}

func setupApplicationService(t *testing.T) applicationDeps {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockApplicationRepository(ctrl)
	events := mocks.NewMockEventPublisher(ctrl)
	metrics := mocks.NewMockMetrics(ctrl)

	svc := NewApplicationService(repo, events, metrics, newTestLogger()).(*applicationService)
	svc.now = func() time.Time { return time.UnixMilli(1_700_000_123_456) }
	return applicationDeps{svc: svc, repo: repo, events: events, metrics: metrics}
}

func requireAppError(t *testing.T, err error, code string) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestApplicationService_Submit_Success(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()

	profile := sampleProfile()
	profile.Email = "  A@B.com "
	profile.PreferredTerminals = []string{"T1", " T1 ", "T2", ""}

	d.repo.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(nil, nil)
	d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, app *domain.VendorApplication) error {
			assert.Equal(t, "APP-123456", app.ApplicationNumber)
			assert.Equal(t, domain.ApplicationStatusPending, app.Status)
			assert.Equal(t, "a@b.com", app.Email)
			assert.Equal(t, []string{"T1", "T2"}, app.PreferredTerminals)
			assert.Nil(t, app.ReviewedBy)
			return nil
		})
	d.metrics.EXPECT().ApplicationSubmitted()
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ev domain.ApplicationEvent) error {
			assert.Equal(t, domain.EventApplicationSubmitted, ev.Type)
			assert.Equal(t, "APP-123456", ev.ApplicationNumber)
			return nil
		})

	app, err := d.svc.Submit(ctx, profile)
	require.NoError(t, err)
	assert.Regexp(t, `^APP-\d{6}$`, app.ApplicationNumber)
	assert.NotEqual(t, uuid.Nil, app.ID)
}

func TestApplicationService_Submit_DuplicateEmail(t *testing.T) {
	d := setupApplicationService(t)

	d.repo.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(pendingApplication(), nil)
	// No Create: nothing is stored for a duplicate.

	app, err := d.svc.Submit(context.Background(), sampleProfile())
	assert.Nil(t, app)
	appErr := requireAppError(t, err, "APP_002")
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestApplicationService_Submit_DuplicateEmailRace(t *testing.T) {
	d := setupApplicationService(t)

	d.repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
	d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.ErrDuplicateEmail)

	_, err := d.svc.Submit(context.Background(), sampleProfile())
	requireAppError(t, err, "APP_002")
}

func TestApplicationService_Submit_ValidationError(t *testing.T) {
	d := setupApplicationService(t)

	profile := sampleProfile()
	profile.TaxID = ""
	profile.PreferredTerminals = nil

	_, err := d.svc.Submit(context.Background(), profile)
	appErr := requireAppError(t, err, "APP_001")
	assert.Contains(t, appErr.Fields, "taxId")
	assert.Contains(t, appErr.Fields, "preferredTerminals")
}

func TestApplicationService_Submit_DisplayNameEmailRejected(t *testing.T) {
	d := setupApplicationService(t)

	profile := sampleProfile()
	profile.Email = "Ada <a@b.com>"

	// No GetByEmail or Create expectations: the store must not be touched.
	_, err := d.svc.Submit(context.Background(), profile)
	appErr := requireAppError(t, err, "APP_001")
	assert.Contains(t, appErr.Fields, "email")
}

func TestApplicationService_Submit_RetriesNumberCollision(t *testing.T) {
	d := setupApplicationService(t)

	var numbers []string
	d.repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
	gomock.InOrder(
		d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, app *domain.VendorApplication) error {
			numbers = append(numbers, app.ApplicationNumber)
			return domain.ErrDuplicateApplicationNumber
		}),
		d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, app *domain.VendorApplication) error {
			numbers = append(numbers, app.ApplicationNumber)
			return nil
		}),
	)
	d.metrics.EXPECT().ApplicationSubmitted()
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	app, err := d.svc.Submit(context.Background(), sampleProfile())
	require.NoError(t, err)
	require.Len(t, numbers, 2)
	assert.Equal(t, "APP-123456", numbers[0])
	assert.Regexp(t, `^APP-\d{6}$`, numbers[1])
	assert.Equal(t, numbers[1], app.ApplicationNumber)
}

func TestApplicationService_Submit_GivesUpAfterMaxAttempts(t *testing.T) {
	d := setupApplicationService(t)

	d.repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
	d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.ErrDuplicateApplicationNumber).Times(maxApplicationNumberAttempts)

	_, err := d.svc.Submit(context.Background(), sampleProfile())
	requireAppError(t, err, "SYS_001")
	assert.ErrorIs(t, err, domain.ErrDuplicateApplicationNumber)
}

func TestApplicationService_Submit_PublishFailureIsNotFatal(t *testing.T) {
	d := setupApplicationService(t)

	d.repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
	d.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	d.metrics.EXPECT().ApplicationSubmitted()
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	_, err := d.svc.Submit(context.Background(), sampleProfile())
	assert.NoError(t, err)
}

func TestApplicationService_Submit_StoreFailure(t *testing.T) {
	d := setupApplicationService(t)

	d.repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := d.svc.Submit(context.Background(), sampleProfile())
	requireAppError(t, err, "SYS_001")
}

func TestApplicationService_Get(t *testing.T) {
	d := setupApplicationService(t)
	app := pendingApplication()

	d.repo.EXPECT().GetByID(gomock.Any(), app.ID).Return(app, nil)
	got, err := d.svc.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, app, got)

	missing := uuid.New()
	d.repo.EXPECT().GetByID(gomock.Any(), missing).Return(nil, nil)
	_, err = d.svc.Get(context.Background(), missing)
	requireAppError(t, err, "APP_003")
}

func TestApplicationService_List_NeverNil(t *testing.T) {
	d := setupApplicationService(t)
	status := domain.ApplicationStatusApproved

	d.repo.EXPECT().List(gomock.Any(), &status).Return(nil, nil)

	apps, err := d.svc.List(context.Background(), &status)
	require.NoError(t, err)
	assert.NotNil(t, apps)
	assert.Empty(t, apps)
}

func TestApplicationService_CheckByEmail(t *testing.T) {
	d := setupApplicationService(t)
	app := pendingApplication()

	d.repo.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(app, nil)
	got, err := d.svc.CheckByEmail(context.Background(), " A@b.COM")
	require.NoError(t, err)
	assert.Equal(t, app.ApplicationNumber, got.ApplicationNumber)

	d.repo.EXPECT().GetByEmail(gomock.Any(), "nobody@b.com").Return(nil, nil)
	_, err = d.svc.CheckByEmail(context.Background(), "nobody@b.com")
	requireAppError(t, err, "APP_003")
}

func TestApplicationNumberFromTime(t *testing.T) {
	assert.Equal(t, "APP-123456", applicationNumberFromTime(time.UnixMilli(1_700_000_123_456)))
	assert.Equal(t, "APP-000042", applicationNumberFromTime(time.UnixMilli(5_000_000_042)))

	n, err := randomApplicationNumber()
	require.NoError(t, err)
	assert.Regexp(t, `^APP-\d{6}$`, n)
}
