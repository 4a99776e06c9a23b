package handler

import (
	"strings"

	"airport-vms/internal/adapter/http/dto"
	"airport-vms/internal/adapter/http/middleware"
	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"
	"airport-vms/pkg/apperror"
	"airport-vms/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ApplicationHandler handles vendor application endpoints.
type ApplicationHandler struct {
	appSvc    ports.ApplicationService
	reviewSvc ports.ReviewService
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(appSvc ports.ApplicationService, reviewSvc ports.ReviewService) *ApplicationHandler {
	return &ApplicationHandler{appSvc: appSvc, reviewSvc: reviewSvc}
}

// Submit handles POST /api/v1/vendor-applications/submit.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.TrimStruct(&req)

	app, err := h.appSvc.Submit(c.Request.Context(), req.Profile())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, app.ID.String())
	response.Created(c, dto.SubmitApplicationResponse{
		Success:           true,
		Message:           "Application submitted successfully",
		ApplicationNumber: app.ApplicationNumber,
	})
}

// List handles GET /api/v1/vendor-applications.
func (h *ApplicationHandler) List(c *gin.Context) {
	apps, err := h.appSvc.List(c.Request.Context(), nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, apps)
}

// ListByStatus handles GET /api/v1/vendor-applications/status/:status.
func (h *ApplicationHandler) ListByStatus(c *gin.Context) {
	status := domain.ApplicationStatus(strings.ToLower(strings.TrimSpace(c.Param("status"))))
	apps, err := h.appSvc.List(c.Request.Context(), &status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, apps)
}

// CheckStatus handles GET /api/v1/vendor-applications/check/:email.
func (h *ApplicationHandler) CheckStatus(c *gin.Context) {
	app, err := h.appSvc.CheckByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ApplicationStatusResponse{
		Status:            app.Status,
		ApplicationNumber: app.ApplicationNumber,
		SubmittedAt:       app.CreatedAt,
	})
}

// Get handles GET /api/v1/vendor-applications/:id.
func (h *ApplicationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	app, err := h.appSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, app)
}

// Review handles PATCH /api/v1/vendor-applications/:id/status.
// reviewedBy defaults to the authenticated admin's email.
func (h *ApplicationHandler) Review(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.TrimStruct(&req)

	reviewedBy := req.ReviewedBy
	if reviewedBy == "" {
		if p, ok := middleware.PrincipalFrom(c); ok {
			reviewedBy = p.Email
		}
	}

	outcome, err := h.reviewSvc.Review(c.Request.Context(), ports.ReviewRequest{
		ApplicationID: id,
		Status:        domain.ApplicationStatus(req.Status),
		ReviewedBy:    reviewedBy,
		Reason:        req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	response.OK(c, dto.NewReviewResponse(outcome))
}

// parseID writes a 404 for ids that cannot exist.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound("Application"))
		return uuid.Nil, false
	}
	return id, true
}
