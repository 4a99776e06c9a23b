package service

import (
	"context"
	"io"
	"time"

	"airport-vms/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// mockTx implements pgx.Tx for testing and records how it ended.
type mockTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (m *mockTx) Commit(_ context.Context) error {
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(_ context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}

func sampleProfile() domain.BusinessProfile {
	return domain.BusinessProfile{
		BusinessName:       "Sky Coffee",
		BusinessType:       "food_beverage",
		TaxID:              "12-3456789",
		BusinessLicense:    "BL-2024-001",
		YearsInBusiness:    4,
		OwnerName:          "Ada Park",
		Email:              "a@b.com",
		Phone:              "+1 555 0100",
		Address:            "1 Terminal Way",
		City:               "Springfield",
		State:              "IL",
		ZipCode:            "62701",
		PreferredTerminals: []string{"T1"},
		ShopType:           "kiosk",
		ExpectedRevenue:    "50k-100k",
	}
}

func pendingApplication() *domain.VendorApplication {
	now := time.Now().UTC()
	return &domain.VendorApplication{
		ID:                uuid.New(),
		ApplicationNumber: "APP-123456",
		BusinessProfile:   sampleProfile(),
		Status:            domain.ApplicationStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
