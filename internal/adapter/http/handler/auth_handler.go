package handler

import (
	"airport-vms/internal/adapter/http/dto"
	"airport-vms/internal/adapter/http/middleware"
	"airport-vms/internal/core/ports"
	"airport-vms/pkg/apperror"
	"airport-vms/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authSvc ports.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.TrimStruct(&req)

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxActorID, result.User.ID)
	response.OK(c, dto.LoginResponse{
		Success:   true,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Unix(),
		User:      dto.NewUserResponse(result.User),
	})
}

// Verify handles GET /api/v1/auth/verify. It runs behind JWTAuth.
func (h *AuthHandler) Verify(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	response.OK(c, dto.VerifyResponse{Success: true, User: dto.NewUserResponse(*p)})
}
