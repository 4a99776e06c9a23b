package service

import (
	"context"
	"errors"
	"testing"

	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports/mocks"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func approvedApplication() *domain.VendorApplication {
	app := pendingApplication()
	app.Status = domain.ApplicationStatusApproved
	return app
}

func TestAccountProvisioner_Provision_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	vendors := mocks.NewMockVendorRepository(ctrl)
	hasher := NewArgon2HashServiceWithParams(fastArgon2)
	p := NewAccountProvisioner(vendors, hasher)

	app := approvedApplication()
	tx := &mockTx{}

	var stored *domain.VendorAccount
	vendors.EXPECT().Create(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, v *domain.VendorAccount) error {
			stored = v
			return nil
		})

	vendor, err := p.Provision(context.Background(), tx, app, "S3cretS3cretS3cret00")
	require.NoError(t, err)
	require.Same(t, stored, vendor)

	assert.Equal(t, app.ID, vendor.ApplicationID)
	assert.Equal(t, app.Email, vendor.Email)
	assert.Equal(t, app.OwnerName, vendor.Name)
	assert.Equal(t, app.BusinessName, vendor.BusinessName)
	assert.Equal(t, domain.VendorStatusActive, vendor.Status)
	assert.Equal(t, domain.RoleVendor, vendor.Role)
	assert.Equal(t, domain.DefaultVendorPermissions, vendor.Permissions)
	assert.NotContains(t, vendor.PasswordHash, "S3cretS3cretS3cret00")

	ok, err := hasher.Verify("S3cretS3cretS3cret00", vendor.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok, "generated secret must authenticate against the stored hash")
}

func TestAccountProvisioner_Provision_IsSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	vendors := mocks.NewMockVendorRepository(ctrl)
	p := NewAccountProvisioner(vendors, NewArgon2HashServiceWithParams(fastArgon2))

	app := approvedApplication()
	vendors.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	vendor, err := p.Provision(context.Background(), &mockTx{}, app, "secret")
	require.NoError(t, err)

	app.PreferredTerminals[0] = "T9"
	app.BusinessName = "Renamed"
	assert.Equal(t, "T1", vendor.PreferredTerminals[0])
	assert.Equal(t, "Sky Coffee", vendor.BusinessName)
}

func TestAccountProvisioner_Provision_RequiresApproved(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := NewAccountProvisioner(mocks.NewMockVendorRepository(ctrl), mocks.NewMockHashService(ctrl))

	_, err := p.Provision(context.Background(), &mockTx{}, pendingApplication(), "secret")
	requireAppError(t, err, "APP_001")

	_, err = p.Provision(context.Background(), &mockTx{}, approvedApplication(), "")
	requireAppError(t, err, "APP_001")
}

func TestAccountProvisioner_Provision_DuplicateVendorEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	vendors := mocks.NewMockVendorRepository(ctrl)
	hasher := mocks.NewMockHashService(ctrl)
	p := NewAccountProvisioner(vendors, hasher)

	hasher.EXPECT().Hash("secret").Return("$argon2id$hash", nil)
	vendors.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrDuplicateEmail)

	_, err := p.Provision(context.Background(), &mockTx{}, approvedApplication(), "secret")
	appErr := requireAppError(t, err, "APP_002")
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestAccountProvisioner_Provision_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	vendors := mocks.NewMockVendorRepository(ctrl)
	hasher := mocks.NewMockHashService(ctrl)
	p := NewAccountProvisioner(vendors, hasher)

	storeErr := errors.New("disk full")
	hasher.EXPECT().Hash("secret").Return("$argon2id$hash", nil)
	vendors.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(storeErr)

	_, err := p.Provision(context.Background(), &mockTx{}, approvedApplication(), "secret")
	requireAppError(t, err, "SYS_001")
	assert.ErrorIs(t, err, storeErr)
}
