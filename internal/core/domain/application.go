package domain

import (
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the review state of a vendor application.
// Any value other than pending is a decision; approved and rejected carry side effects.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// IsDecision reports whether the status closes the review.
func (s ApplicationStatus) IsDecision() bool {
	return s != "" && s != ApplicationStatusPending
}

// BusinessProfile is the business, contact and preference block shared by an
// application and the vendor account provisioned from it.
type BusinessProfile struct {
	BusinessName    string `json:"businessName"`
	BusinessType    string `json:"businessType"`
	TaxID           string `json:"taxId"`
	BusinessLicense string `json:"businessLicense"`
	YearsInBusiness int    `json:"yearsInBusiness"`

	OwnerName string `json:"ownerName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`

	PreferredTerminals []string `json:"preferredTerminals"`
	ShopType           string   `json:"shopType"`
	ExpectedRevenue    string   `json:"expectedRevenue"`

	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	SocialMedia string `json:"socialMedia,omitempty"`
}

// Snapshot returns a deep copy, so later edits to the source do not leak into the copy.
func (p BusinessProfile) Snapshot() BusinessProfile {
	p.PreferredTerminals = slices.Clone(p.PreferredTerminals)
	return p
}

// Validate returns a field -> message map of every violated rule, or nil.
func (p *BusinessProfile) Validate() map[string]string {
	fields := make(map[string]string)

	required := []struct {
		name  string
		value string
	}{
		{"businessName", p.BusinessName},
		{"businessType", p.BusinessType},
		{"taxId", p.TaxID},
		{"businessLicense", p.BusinessLicense},
		{"ownerName", p.OwnerName},
		{"email", p.Email},
		{"phone", p.Phone},
		{"address", p.Address},
		{"city", p.City},
		{"state", p.State},
		{"zipCode", p.ZipCode},
		{"shopType", p.ShopType},
		{"expectedRevenue", p.ExpectedRevenue},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			fields[r.name] = "is required"
		}
	}

	if _, ok := fields["email"]; !ok && !isBareAddress(p.Email) {
		fields["email"] = "must be a valid email address"
	}
	if p.YearsInBusiness < 0 {
		fields["yearsInBusiness"] = "must not be negative"
	}

	terminals := 0
	for _, t := range p.PreferredTerminals {
		if strings.TrimSpace(t) != "" {
			terminals++
		}
	}
	if terminals == 0 {
		fields["preferredTerminals"] = "must contain at least one terminal"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// isBareAddress accepts only addr-spec forms such as a@b.com; display names,
// angle brackets and comments are refused.
func isBareAddress(email string) bool {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Name == "" && addr.Address == email
}

// NormalizeEmail is the canonical form used for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VendorApplication is a prospective vendor's dossier awaiting a decision.
type VendorApplication struct {
	ID                uuid.UUID `json:"id"`
	ApplicationNumber string    `json:"applicationNumber"`
	BusinessProfile
	Status     ApplicationStatus `json:"status"`
	ReviewedBy *string           `json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time        `json:"reviewedAt,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// IsPending returns true while no decision has been recorded.
func (a *VendorApplication) IsPending() bool {
	return a.Status == ApplicationStatusPending
}

// MarkReviewed applies a decision to the in-memory record.
func (a *VendorApplication) MarkReviewed(status ApplicationStatus, reviewedBy string, at time.Time) {
	a.Status = status
	a.ReviewedBy = &reviewedBy
	a.ReviewedAt = &at
	a.UpdatedAt = at
}
