package domain

import (
	"time"

	"github.com/google/uuid"
)

// VendorStatus represents the state of a vendor account.
type VendorStatus string

const (
	VendorStatusActive    VendorStatus = "active"
	VendorStatusInactive  VendorStatus = "inactive"
	VendorStatusSuspended VendorStatus = "suspended"
)

const (
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
)

// DefaultVendorPermissions are granted to every provisioned vendor.
var DefaultVendorPermissions = []string{"manage_inventory", "view_reports", "manage_cashiers"}

// VendorAccount is a provisioned vendor login. The profile is a copy of the
// originating application taken at approval time.
type VendorAccount struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"applicationId"`
	PasswordHash  string    `json:"-"`
	Name          string    `json:"name"`
	BusinessProfile
	Role        string       `json:"role"`
	Status      VendorStatus `json:"status"`
	Permissions []string     `json:"permissions"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// IsActive returns true if the vendor may log in.
func (v *VendorAccount) IsActive() bool {
	return v.Status == VendorStatusActive
}

// AdminUser is a member of the approving authority.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"createdAt"`
}
