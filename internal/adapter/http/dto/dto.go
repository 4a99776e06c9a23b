package dto

import (
	"time"

	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"
)

// SubmitApplicationRequest is the request body for POST /vendor-applications/submit.
// Field rules beyond presence are enforced by domain.BusinessProfile.Validate.
type SubmitApplicationRequest struct {
	BusinessName    string `json:"businessName" binding:"required,max=200"`
	BusinessType    string `json:"businessType" binding:"required,max=100"`
	TaxID           string `json:"taxId" binding:"required,max=64"`
	BusinessLicense string `json:"businessLicense" binding:"required,max=64"`
	YearsInBusiness int    `json:"yearsInBusiness" binding:"gte=0,lte=500"`

	OwnerName string `json:"ownerName" binding:"required,max=200"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Phone     string `json:"phone" binding:"required,max=32"`
	Address   string `json:"address" binding:"required,max=300"`
	City      string `json:"city" binding:"required,max=100"`
	State     string `json:"state" binding:"required,max=100"`
	ZipCode   string `json:"zipCode" binding:"required,max=20"`

	PreferredTerminals []string `json:"preferredTerminals" binding:"required,min=1,max=20,dive,max=50"`
	ShopType           string   `json:"shopType" binding:"required,max=100"`
	ExpectedRevenue    string   `json:"expectedRevenue" binding:"required,max=100"`

	Description string `json:"description" binding:"max=2000"`
	Website     string `json:"website" binding:"max=300,safe_url"`
	SocialMedia string `json:"socialMedia" binding:"max=300"`
}

// Profile converts the request into the domain profile.
func (r *SubmitApplicationRequest) Profile() domain.BusinessProfile {
	return domain.BusinessProfile{
		BusinessName:       r.BusinessName,
		BusinessType:       r.BusinessType,
		TaxID:              r.TaxID,
		BusinessLicense:    r.BusinessLicense,
		YearsInBusiness:    r.YearsInBusiness,
		OwnerName:          r.OwnerName,
		Email:              r.Email,
		Phone:              r.Phone,
		Address:            r.Address,
		City:               r.City,
		State:              r.State,
		ZipCode:            r.ZipCode,
		PreferredTerminals: r.PreferredTerminals,
		ShopType:           r.ShopType,
		ExpectedRevenue:    r.ExpectedRevenue,
		Description:        r.Description,
		Website:            r.Website,
		SocialMedia:        r.SocialMedia,
	}
}

type SubmitApplicationResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	ApplicationNumber string `json:"applicationNumber"`
}

// ReviewRequest is the request body for PATCH /vendor-applications/:id/status.
type ReviewRequest struct {
	Status     string `json:"status" binding:"required,review_status"`
	ReviewedBy string `json:"reviewedBy" binding:"max=254"`
	Reason     string `json:"reason" binding:"max=2000"`
}

// ProvisionedVendor carries the one-time credentials of a new vendor.
type ProvisionedVendor struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
}

type ReviewResponse struct {
	Success     bool                      `json:"success"`
	Message     string                    `json:"message"`
	Notified    bool                      `json:"notified"`
	Vendor      *ProvisionedVendor        `json:"vendor,omitempty"`
	Application *domain.VendorApplication `json:"application,omitempty"`
}

// NewReviewResponse shapes an outcome the way clients expect: approvals carry
// the vendor block, every other decision carries the updated application.
func NewReviewResponse(o *ports.ReviewOutcome) ReviewResponse {
	app := o.Application
	resp := ReviewResponse{Success: true, Notified: o.Notified}

	switch {
	case app.Status == domain.ApplicationStatusApproved && o.Vendor != nil:
		resp.Message = "Application approved and vendor account created"
		if o.Notified {
			resp.Message = "Application approved, vendor account created, and approval email sent"
		}
		resp.Vendor = &ProvisionedVendor{
			Email:        o.Vendor.Email,
			Password:     o.PlaintextSecret,
			Name:         o.Vendor.Name,
			BusinessName: o.Vendor.BusinessName,
		}
	case app.Status == domain.ApplicationStatusRejected:
		resp.Message = "Application rejected"
		if o.Notified {
			resp.Message = "Application rejected and rejection email sent"
		}
		resp.Application = app
	default:
		resp.Message = "Application " + string(app.Status)
		resp.Application = app
	}
	return resp
}

// ApplicationStatusResponse is the public status lookup result.
type ApplicationStatusResponse struct {
	Status            domain.ApplicationStatus `json:"status"`
	ApplicationNumber string                   `json:"applicationNumber"`
	SubmittedAt       time.Time                `json:"submittedAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=128"`
}

type UserResponse struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	BusinessName string   `json:"businessName,omitempty"`
	Permissions  []string `json:"permissions"`
}

func NewUserResponse(p ports.Principal) UserResponse {
	perms := p.Permissions
	if perms == nil {
		perms = []string{}
	}
	return UserResponse{
		ID:           p.ID.String(),
		Email:        p.Email,
		Name:         p.Name,
		Role:         p.Role,
		BusinessName: p.BusinessName,
		Permissions:  perms,
	}
}

type LoginResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expiresAt"` // Unix timestamp
	User      UserResponse `json:"user"`
}

type VerifyResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}
